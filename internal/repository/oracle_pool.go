package repo

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"game_review/internal/bootstrap"
	domain "game_review/internal/domain/analysis"
	errs "game_review/internal/errors"
	"game_review/microservices/oraclerpc"
)

type OracleSession interface {
	domain.Oracle
	Close() error
}

type SessionFactory func(ctx context.Context) (OracleSession, error)

// OraclePool hands out at most size sessions at a time. Idle sessions are
// kept for reuse; sessions released as broken are closed.
type OraclePool struct {
	factory SessionFactory
	slots   chan struct{}
	idle    chan OracleSession
	log     *zap.SugaredLogger
	closers []func() error
}

func NewOraclePool(size int, factory SessionFactory, log *zap.SugaredLogger) *OraclePool {
	if size < 1 {
		size = 1
	}
	return &OraclePool{
		factory: factory,
		slots:   make(chan struct{}, size),
		idle:    make(chan OracleSession, size),
		log:     log,
	}
}

// OpenOraclePool builds a pool of local engine sessions, or of sessions on
// the oracle microservice when ORACLE_ADDR is set.
func OpenOraclePool(cfg *bootstrap.Config, log *zap.SugaredLogger) (*OraclePool, error) {
	if cfg.OracleAddr == "" {
		factory := func(ctx context.Context) (OracleSession, error) {
			return NewUCIOracle(cfg, log)
		}
		return NewOraclePool(cfg.EngineWorkers, factory, log), nil
	}

	conn, err := grpc.NewClient(cfg.OracleAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", errs.ErrOracleUnavailable, cfg.OracleAddr, err)
	}
	client := oraclerpc.NewClient(conn)
	factory := func(ctx context.Context) (OracleSession, error) {
		return NewRPCOracle(client, cfg.EngineDepth), nil
	}

	pool := NewOraclePool(cfg.EngineWorkers, factory, log)
	pool.closers = append(pool.closers, conn.Close)
	log.Infow("using remote oracle", "addr", cfg.OracleAddr)
	return pool, nil
}

func (p *OraclePool) Acquire(ctx context.Context) (domain.Oracle, error) {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case s := <-p.idle:
		return s, nil
	default:
	}

	s, err := p.factory(ctx)
	if err != nil {
		<-p.slots
		return nil, err
	}
	return s, nil
}

func (p *OraclePool) Release(oracle domain.Oracle, broken bool) {
	defer func() { <-p.slots }()

	s, ok := oracle.(OracleSession)
	if !ok {
		return
	}
	if broken {
		p.closeSession(s)
		return
	}
	select {
	case p.idle <- s:
	default:
		p.closeSession(s)
	}
}

func (p *OraclePool) closeSession(s OracleSession) {
	if err := s.Close(); err != nil {
		p.log.Warnw("closing oracle session", "error", err)
	}
}

// Close shuts down idle sessions. Sessions still acquired are closed when
// released as broken or dropped by their holder.
func (p *OraclePool) Close() error {
	for {
		select {
		case s := <-p.idle:
			p.closeSession(s)
		default:
			var firstErr error
			for _, c := range p.closers {
				if err := c(); err != nil && firstErr == nil {
					firstErr = err
				}
			}
			return firstErr
		}
	}
}
