package repo

import (
	"context"
	"fmt"

	domain "game_review/internal/domain/analysis"
	errs "game_review/internal/errors"
	"game_review/microservices/oraclerpc"
)

// RPCOracle is a session on the oracle microservice. The position lives
// client side; each position costs one Analyze call on a server engine.
type RPCOracle struct {
	client   *oraclerpc.Client
	depth    int
	position domain.Position
	last     *oraclerpc.AnalyzeReply
}

func NewRPCOracle(client *oraclerpc.Client, depth int) *RPCOracle {
	return &RPCOracle{client: client, depth: depth}
}

func (o *RPCOracle) SetPosition(ctx context.Context, pos domain.Position) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.position = pos
	o.last = nil
	return nil
}

func (o *RPCOracle) BestMove(ctx context.Context) (string, error) {
	reply, err := o.analyze(ctx)
	if err != nil {
		return "", err
	}
	return reply.BestMove, nil
}

func (o *RPCOracle) Evaluate(ctx context.Context) (domain.Evaluation, error) {
	reply, err := o.analyze(ctx)
	if err != nil {
		return domain.Evaluation{}, err
	}
	return reply.Evaluation, nil
}

func (o *RPCOracle) analyze(ctx context.Context) (*oraclerpc.AnalyzeReply, error) {
	if o.last != nil {
		return o.last, nil
	}
	if o.position == "" {
		return nil, fmt.Errorf("%w: no position set", errs.ErrOracleUnavailable)
	}

	reply, err := o.client.Analyze(ctx, oraclerpc.AnalyzeRequest{FEN: string(o.position), Depth: o.depth})
	if err != nil {
		return nil, err
	}
	o.last = &reply
	return o.last, nil
}

func (o *RPCOracle) Close() error {
	return nil
}
