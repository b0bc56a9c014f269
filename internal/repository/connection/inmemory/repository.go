package inmemory

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/synctube/server/internal/repository/connection"
)

// repo maps websocket connections to user ids and back. It is the only
// process-local state in the server; everything else lives in redis.
type repo struct {
	connList map[*websocket.Conn]string
	idList   map[string]*websocket.Conn
	mu       sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		connList: make(map[*websocket.Conn]string),
		idList:   make(map[string]*websocket.Conn),
	}
}

func (r *repo) Add(conn *websocket.Conn, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connList[conn] != "" || r.idList[userID] != nil {
		return connection.ErrAlreadyExists
	}

	r.connList[conn] = userID
	r.idList[userID] = conn

	return nil
}

func (r *repo) RemoveByConn(conn *websocket.Conn) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.connList[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList, userID)

	return userID, nil
}

func (r *repo) RemoveByUserID(userID string) (*websocket.Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.idList[userID]
	if !ok {
		return nil, connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList, userID)

	return conn, nil
}

func (r *repo) GetUserID(conn *websocket.Conn) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userID, ok := r.connList[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	return userID, nil
}

func (r *repo) GetConn(userID string) (*websocket.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.idList[userID]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return conn, nil
}
