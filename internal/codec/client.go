package codec

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// #region service
// VectorizeMethod is the full method name of the remote vectorizer RPC.
// Requests carry the text as a StringValue, responses the vector as a
// ListValue of numbers.
const VectorizeMethod = "/situation.v1.FeatureService/Vectorize"

// FeatureServiceClient is the client side of the feature service.
type FeatureServiceClient interface {
	Vectorize(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.ListValue, error)
}

type featureServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewFeatureServiceClient wraps a connection.
func NewFeatureServiceClient(cc grpc.ClientConnInterface) FeatureServiceClient {
	return &featureServiceClient{cc: cc}
}

func (c *featureServiceClient) Vectorize(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, VectorizeMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
// #endregion service

// #region client-struct
// Client wraps the gRPC connection to the remote feature vectorizer.
type Client struct {
	conn   *grpc.ClientConn
	client FeatureServiceClient
}
// #endregion client-struct

// #region constructor
// NewClient connects to the feature service. Extra options are appended
// after insecure transport credentials.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{
		conn:   conn,
		client: NewFeatureServiceClient(conn),
	}, nil
}

// NewClientWithService creates a Client with an injected service implementation.
// Used for testing without a real gRPC connection.
func NewClientWithService(svc FeatureServiceClient) *Client {
	return &Client{client: svc}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
// #endregion close

// #region vectorize
// Name identifies the remote vectorizer in results.
func (c *Client) Name() string { return "remote" }

// Vectorize sends text to the feature service.
func (c *Client) Vectorize(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.Vectorize(ctx, wrapperspb.String(text))
	if err != nil {
		return nil, fmt.Errorf("vectorize rpc: %w", err)
	}
	values := resp.GetValues()
	vec := make([]float32, len(values))
	for i, v := range values {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("vectorize rpc: component %d is not a number", i)
		}
		vec[i] = float32(n.NumberValue)
	}
	return vec, nil
}
// #endregion vectorize

// #region retryable
// IsRetryable reports whether a vectorizer error is transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	s, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch s.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return true
	}
	return false
}
// #endregion retryable
