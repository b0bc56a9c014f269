package randstr

import "math/rand/v2"

type Generator struct {
	charset []byte
}

func New(charset []byte) *Generator {
	return &Generator{charset: charset}
}

func (g Generator) GenerateRandomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = g.charset[rand.IntN(len(g.charset))]
	}

	return string(b)
}
