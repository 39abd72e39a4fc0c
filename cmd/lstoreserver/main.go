// Command lstoreserver exposes a small gRPC admin/introspection surface
// around a running Database: Stats, ListTables, FlushAll. It never routes
// query execution — the wire surface is read-only stats plus a flush
// trigger, so it adds no distributed-coordination surface over the core.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"github.com/hnakae/lstore/internal/config"
	"github.com/hnakae/lstore/internal/engine"
)

var (
	flagConfig = flag.String("config", "lstore.yaml", "path to engine config YAML")
	flagGRPC   = flag.String("grpc", ":9090", "gRPC listen address")
)

type statsResponse struct {
	SessionID     string `json:"session_id"`
	DataDir       string `json:"data_dir"`
	ResidentPages int    `json:"resident_pages"`
	TableCount    int    `json:"table_count"`
}

type listTablesResponse struct {
	Tables []string `json:"tables"`
}

type flushAllResponse struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type emptyRequest struct{}

// jsonCodec lets the admin surface speak plain JSON over gRPC instead of
// protobuf wire framing, matching the teacher's manual codec registration.
type jsonCodec struct{}

func (jsonCodec) Name() string                      { return "json" }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// AdminServer is the gRPC-exposed interface implemented by adminServer.
type AdminServer interface {
	Stats(context.Context, *emptyRequest) (*statsResponse, error)
	ListTables(context.Context, *emptyRequest) (*listTablesResponse, error)
	FlushAll(context.Context, *emptyRequest) (*flushAllResponse, error)
}

func registerAdminServer(s *grpc.Server, srv AdminServer) {
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: "lstore.Admin",
		HandlerType: (*AdminServer)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "Stats", Handler: _Admin_Stats_Handler},
			{MethodName: "ListTables", Handler: _Admin_ListTables_Handler},
			{MethodName: "FlushAll", Handler: _Admin_FlushAll_Handler},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "lstore",
	}, srv)
}

func _Admin_Stats_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptyRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServer).Stats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/lstore.Admin/Stats"}
	handler := func(ctx context.Context, req any) (any, error) { return srv.(AdminServer).Stats(ctx, req.(*emptyRequest)) }
	return interceptor(ctx, in, info, handler)
}

func _Admin_ListTables_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptyRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServer).ListTables(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/lstore.Admin/ListTables"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AdminServer).ListTables(ctx, req.(*emptyRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Admin_FlushAll_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptyRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServer).FlushAll(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/lstore.Admin/FlushAll"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AdminServer).FlushAll(ctx, req.(*emptyRequest))
	}
	return interceptor(ctx, in, info, handler)
}

type adminServer struct {
	db *engine.Database
}

func (a *adminServer) Stats(ctx context.Context, _ *emptyRequest) (*statsResponse, error) {
	s := a.db.Stats()
	return &statsResponse{
		SessionID:     s.SessionID,
		DataDir:       s.DataDir,
		ResidentPages: s.ResidentPages,
		TableCount:    s.TableCount,
	}, nil
}

func (a *adminServer) ListTables(ctx context.Context, _ *emptyRequest) (*listTablesResponse, error) {
	return &listTablesResponse{Tables: a.db.ListTables()}, nil
}

func (a *adminServer) FlushAll(ctx context.Context, _ *emptyRequest) (*flushAllResponse, error) {
	if err := a.db.Flush(); err != nil {
		return &flushAllResponse{Ok: false, Error: err.Error()}, nil
	}
	return &flushAllResponse{Ok: true}, nil
}

func main() {
	flag.Parse()
	encoding.RegisterCodec(jsonCodec{})

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		log.Fatalf("lstoreserver: load config: %v", err)
	}

	db, err := engine.Open(cfg)
	if err != nil {
		log.Fatalf("lstoreserver: open database: %v", err)
	}
	defer db.Close()

	lis, err := net.Listen("tcp", *flagGRPC)
	if err != nil {
		log.Fatalf("lstoreserver: listen %s: %v", *flagGRPC, err)
	}

	grpcServer := grpc.NewServer()
	registerAdminServer(grpcServer, &adminServer{db: db})

	log.Printf("lstoreserver: admin surface listening on %s (session %s)", *flagGRPC, db.SessionID)
	if err := grpcServer.Serve(lis); err != nil {
		log.Fatalf("lstoreserver: serve: %v", err)
	}
}
