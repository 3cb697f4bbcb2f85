// Package oraclerpc is the wire contract of the oracle microservice. Messages
// travel as google.protobuf.Struct so both sides share the default proto
// codec without generated stubs.
package oraclerpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	domain "game_review/internal/domain/analysis"
	errs "game_review/internal/errors"
)

const (
	ServiceName   = "oracle.Oracle"
	AnalyzeMethod = "/oracle.Oracle/Analyze"
)

type AnalyzeRequest struct {
	FEN   string
	Depth int
}

type AnalyzeReply struct {
	BestMove   string
	Evaluation domain.Evaluation
}

func (r AnalyzeRequest) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"fen":   r.FEN,
		"depth": r.Depth,
	})
}

func RequestFromStruct(s *structpb.Struct) (AnalyzeRequest, error) {
	fields := s.GetFields()
	req := AnalyzeRequest{
		FEN:   fields["fen"].GetStringValue(),
		Depth: int(fields["depth"].GetNumberValue()),
	}
	if req.FEN == "" {
		return AnalyzeRequest{}, fmt.Errorf("missing fen")
	}
	return req, nil
}

func (r AnalyzeReply) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"best_move":    r.BestMove,
		"eval_type":    string(r.Evaluation.Kind),
		"eval_value":   r.Evaluation.Value,
		"eval_winning": r.Evaluation.Winning,
	})
}

func ReplyFromStruct(s *structpb.Struct) (AnalyzeReply, error) {
	fields := s.GetFields()
	reply := AnalyzeReply{
		BestMove: fields["best_move"].GetStringValue(),
		Evaluation: domain.Evaluation{
			Kind:    domain.EvalKind(fields["eval_type"].GetStringValue()),
			Value:   int(fields["eval_value"].GetNumberValue()),
			Winning: fields["eval_winning"].GetBoolValue(),
		},
	}
	if reply.BestMove == "" {
		return AnalyzeReply{}, fmt.Errorf("missing best_move")
	}
	if reply.Evaluation.Kind != domain.EvalCentipawn && reply.Evaluation.Kind != domain.EvalMate {
		return AnalyzeReply{}, fmt.Errorf("unknown eval_type %q", reply.Evaluation.Kind)
	}
	return reply, nil
}

// OracleServer is implemented by the microservice usecase.
type OracleServer interface {
	Analyze(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

func RegisterOracleServer(s grpc.ServiceRegistrar, srv OracleServer) {
	s.RegisterService(&serviceDesc, srv)
}

func analyzeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OracleServer).Analyze(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: AnalyzeMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OracleServer).Analyze(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OracleServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Analyze",
			Handler:    analyzeHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "oracle.proto",
}

type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Analyze maps every transport or decoding failure to ErrOracleUnavailable.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeReply, error) {
	in, err := req.ToStruct()
	if err != nil {
		return AnalyzeReply{}, fmt.Errorf("%w: encode request: %v", errs.ErrOracleUnavailable, err)
	}

	out := new(structpb.Struct)
	if err = c.conn.Invoke(ctx, AnalyzeMethod, in, out); err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.Canceled {
			return AnalyzeReply{}, context.Canceled
		}
		return AnalyzeReply{}, fmt.Errorf("%w: %v", errs.ErrOracleUnavailable, err)
	}

	reply, err := ReplyFromStruct(out)
	if err != nil {
		return AnalyzeReply{}, fmt.Errorf("%w: %v", errs.ErrOracleUnavailable, err)
	}
	return reply, nil
}
