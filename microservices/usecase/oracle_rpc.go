package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	domain "game_review/internal/domain/analysis"
	"game_review/microservices/oraclerpc"
)

type OraclePool interface {
	Acquire(ctx context.Context) (domain.Oracle, error)
	Release(oracle domain.Oracle, broken bool)
}

// OracleUseCase serves Analyze calls from a pool of local engine sessions,
// one session per call.
type OracleUseCase struct {
	pool  OraclePool
	depth int
	log   *zap.SugaredLogger
}

func NewOracleUseCase(pool OraclePool, depth int, log *zap.SugaredLogger) *OracleUseCase {
	return &OracleUseCase{
		pool:  pool,
		depth: depth,
		log:   log,
	}
}

func (o *OracleUseCase) Analyze(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := oraclerpc.RequestFromStruct(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.Depth > 0 && req.Depth != o.depth {
		o.log.Debugw("ignoring requested depth", "requested", req.Depth, "depth", o.depth)
	}

	reply, err := o.analyze(ctx, domain.Position(req.FEN))
	if err != nil {
		o.log.Errorw("analyze failed", "fen", req.FEN, "error", err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, status.FromContextError(err).Err()
		}
		return nil, status.Error(codes.Unavailable, err.Error())
	}
	return reply.ToStruct()
}

func (o *OracleUseCase) analyze(ctx context.Context, pos domain.Position) (oraclerpc.AnalyzeReply, error) {
	session, err := o.pool.Acquire(ctx)
	if err != nil {
		return oraclerpc.AnalyzeReply{}, err
	}

	reply, err := query(ctx, session, pos)
	o.pool.Release(session, err != nil)
	return reply, err
}

func query(ctx context.Context, session domain.Oracle, pos domain.Position) (oraclerpc.AnalyzeReply, error) {
	if err := session.SetPosition(ctx, pos); err != nil {
		return oraclerpc.AnalyzeReply{}, err
	}
	best, err := session.BestMove(ctx)
	if err != nil {
		return oraclerpc.AnalyzeReply{}, err
	}
	eval, err := session.Evaluate(ctx)
	if err != nil {
		return oraclerpc.AnalyzeReply{}, err
	}
	return oraclerpc.AnalyzeReply{BestMove: best, Evaluation: eval}, nil
}
