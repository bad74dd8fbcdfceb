package handlers

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/showup-events/showup/internal/devserver"
	"github.com/showup-events/showup/internal/logging"
)

// serveDev runs the dev backend. Replaced in tests.
var serveDev = func(ctx context.Context, s *devserver.Server, addr string) error {
	return s.ListenAndServe(ctx, addr)
}

// Devserver runs the in-memory backend until interrupted.
func Devserver(ctx context.Context, addr string, users []devserver.SeedUser) error {
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.FromContext(ctx).WithName("devserver")
	s := devserver.New(devserver.Options{Users: users, Logger: log})

	seeded := users
	if len(seeded) == 0 {
		seeded = devserver.DefaultUsers
	}
	for _, u := range seeded {
		log.Info("Seeded user", "username", u.Username)
	}

	return serveDev(ctx, s, addr)
}
