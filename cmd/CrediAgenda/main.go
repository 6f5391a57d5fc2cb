package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	https_server "CrediAgenda/api/http"
	"CrediAgenda/internal/config"
	"CrediAgenda/pkg/redis"
	"CrediAgenda/pkg/zlog"
)

func main() {
	conf := config.GetConfig()
	zlog.Init(conf.LogConfig.LogPath)

	if err := https_server.Scheduler.Start(); err != nil {
		zlog.Fatal("no se pudo iniciar el monitor: " + err.Error())
	}

	go func() {
		addr := fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port)
		zlog.Info("servidor escuchando en " + addr)
		var err error
		if conf.SslConfig.Enabled {
			err = https_server.GE.RunTLS(addr, conf.SslConfig.CertFile, conf.SslConfig.KeyFile)
		} else {
			err = https_server.GE.Run(addr)
		}
		if err != nil {
			zlog.Fatal("el servidor no pudo iniciar: " + err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("apagando el servidor...")
	https_server.Scheduler.Stop()
	https_server.ClosePublisher()
	if err := redis.Close(); err != nil {
		zlog.Warn("redis close failed: " + err.Error())
	}
	zlog.Info("servidor detenido")
	zlog.Sync()
}
