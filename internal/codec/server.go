package codec

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/haqei/situation-engine/internal/features"
)

// #region server
type featureServer struct {
	vectorizer features.Vectorizer
}

func (s *featureServer) vectorize(ctx context.Context, in *wrapperspb.StringValue) (*structpb.ListValue, error) {
	vec, err := s.vectorizer.Vectorize(ctx, in.GetValue())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, status.FromContextError(err).Err()
		}
		return nil, status.Errorf(codes.Internal, "vectorize: %v", err)
	}
	out := &structpb.ListValue{Values: make([]*structpb.Value, len(vec))}
	for i, v := range vec {
		out.Values[i] = structpb.NewNumberValue(float64(v))
	}
	return out, nil
}

func vectorizeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*featureServer).vectorize(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: VectorizeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*featureServer).vectorize(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

var featureServiceDesc = grpc.ServiceDesc{
	ServiceName: "situation.v1.FeatureService",
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Vectorize", Handler: vectorizeHandler},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterFeatureServer serves v as the feature service on s.
func RegisterFeatureServer(s grpc.ServiceRegistrar, v features.Vectorizer) {
	s.RegisterService(&featureServiceDesc, &featureServer{vectorizer: v})
}
// #endregion server
