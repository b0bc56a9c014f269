package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/synctube/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	usersLimit = configVar[int]{
		envKey:       "SERVER_USERS_LIMIT",
		flagKey:      "users-limit",
		defaultValue: 9,
	}
	autoCreateOnJoin = configVar[bool]{
		envKey:       "SERVER_AUTO_CREATE_ON_JOIN",
		flagKey:      "auto-create-on-join",
		defaultValue: false,
	}
	emptyRoomTTL = configVar[int]{
		envKey:       "SERVER_EMPTY_ROOM_TTL_SECONDS",
		flagKey:      "empty-room-ttl-seconds",
		defaultValue: 300,
	}
	seekDriftThreshold = configVar[int]{
		envKey:       "SERVER_SEEK_DRIFT_THRESHOLD",
		flagKey:      "seek-drift-threshold",
		defaultValue: 2,
	}
	publishDriftThreshold = configVar[int]{
		envKey:       "SERVER_PUBLISH_DRIFT_THRESHOLD",
		flagKey:      "publish-drift-threshold",
		defaultValue: 3,
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Int(usersLimit.flagKey, usersLimit.defaultValue, "Maximum number of users in a room")
	pflag.Bool(autoCreateOnJoin.flagKey, autoCreateOnJoin.defaultValue, "Fabricate a room when joining an unknown code")
	pflag.Int(emptyRoomTTL.flagKey, emptyRoomTTL.defaultValue, "Seconds an empty room stays around before expiring")
	pflag.Int(seekDriftThreshold.flagKey, seekDriftThreshold.defaultValue, "Drift in seconds above which a client gets corrected")
	pflag.Int(publishDriftThreshold.flagKey, publishDriftThreshold.defaultValue, "Drift in seconds above which the stored position is republished")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(usersLimit.flagKey, usersLimit.envKey)
	viper.BindEnv(autoCreateOnJoin.flagKey, autoCreateOnJoin.envKey)
	viper.BindEnv(emptyRoomTTL.flagKey, emptyRoomTTL.envKey)
	viper.BindEnv(seekDriftThreshold.flagKey, seekDriftThreshold.envKey)
	viper.BindEnv(publishDriftThreshold.flagKey, publishDriftThreshold.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)

	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(usersLimit.flagKey, usersLimit.defaultValue)
	viper.SetDefault(autoCreateOnJoin.flagKey, autoCreateOnJoin.defaultValue)
	viper.SetDefault(emptyRoomTTL.flagKey, emptyRoomTTL.defaultValue)
	viper.SetDefault(seekDriftThreshold.flagKey, seekDriftThreshold.defaultValue)
	viper.SetDefault(publishDriftThreshold.flagKey, publishDriftThreshold.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)

	config := &app.AppConfig{
		Host:                  viper.GetString(host.flagKey),
		Port:                  viper.GetInt(port.flagKey),
		LogLevel:              viper.GetString(logLevel.flagKey),
		UsersLimit:            viper.GetInt(usersLimit.flagKey),
		AutoCreateOnJoin:      viper.GetBool(autoCreateOnJoin.flagKey),
		EmptyRoomTTLSeconds:   viper.GetInt(emptyRoomTTL.flagKey),
		SeekDriftThreshold:    viper.GetInt(seekDriftThreshold.flagKey),
		PublishDriftThreshold: viper.GetInt(publishDriftThreshold.flagKey),
		RedisPort:             viper.GetInt(redisPort.flagKey),
		RedisHost:             viper.GetString(redisHost.flagKey),
		RedisPassword:         viper.GetString(redisPassword.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
