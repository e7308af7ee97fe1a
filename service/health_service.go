package service

import (
	"context"
	"time"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/log"
	"go.uber.org/zap"
)

// Health reports whether the database answers a ping. It never fails; an
// unreachable database is reported in the reply.
func (s *Service) Health(ctx context.Context) todocal.HealthReply {
	reply := todocal.HealthReply{
		Status:    "ok",
		Timestamp: s.now(),
		Database:  "connected",
	}

	if s.Ping == nil {
		return reply
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.Ping(ctx); err != nil {
		log.FromContext(ctx).Warn("database ping failed", zap.Error(err))
		reply.Database = "disconnected"
	}

	return reply
}
