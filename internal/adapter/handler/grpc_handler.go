package handler

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"

	"github.com/rl1809/inventory-records/internal/core/domain"
	"github.com/rl1809/inventory-records/internal/core/service"
)

const (
	recordServiceName = "inventory.v1.RecordService"

	// JSONContentSubtype must be requested by clients with grpc.CallContentSubtype.
	JSONContentSubtype = "json"
)

// Messages travel as JSON, so decimals keep their exact text on the wire.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return JSONContentSubtype }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type ListRecordsRequest struct{}

type ListRecordsResponse struct {
	Records []domain.Record `json:"records"`
}

type InsertRecordRequest struct {
	Name  string `json:"name"`
	Stock string `json:"stock"`
	Price string `json:"price"`
}

type InsertRecordResponse struct {
	ID int64 `json:"id"`
}

type UpdateRecordRequest struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Stock string `json:"stock"`
	Price string `json:"price"`
}

type UpdateRecordResponse struct{}

type DeleteRecordRequest struct {
	ID int64 `json:"id"`
}

type DeleteRecordResponse struct{}

type SelectRecordRequest struct {
	ID int64 `json:"id"`
}

type SelectRecordResponse struct {
	Record domain.Record `json:"record"`
}

type RecordServiceServer interface {
	List(context.Context, *ListRecordsRequest) (*ListRecordsResponse, error)
	Insert(context.Context, *InsertRecordRequest) (*InsertRecordResponse, error)
	Update(context.Context, *UpdateRecordRequest) (*UpdateRecordResponse, error)
	Delete(context.Context, *DeleteRecordRequest) (*DeleteRecordResponse, error)
	SelectForEdit(context.Context, *SelectRecordRequest) (*SelectRecordResponse, error)
}

var RecordServiceDesc = grpc.ServiceDesc{
	ServiceName: recordServiceName,
	HandlerType: (*RecordServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "List", Handler: unary("List", RecordServiceServer.List)},
		{MethodName: "Insert", Handler: unary("Insert", RecordServiceServer.Insert)},
		{MethodName: "Update", Handler: unary("Update", RecordServiceServer.Update)},
		{MethodName: "Delete", Handler: unary("Delete", RecordServiceServer.Delete)},
		{MethodName: "SelectForEdit", Handler: unary("SelectForEdit", RecordServiceServer.SelectForEdit)},
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterRecordServiceServer(s grpc.ServiceRegistrar, srv RecordServiceServer) {
	s.RegisterService(&RecordServiceDesc, srv)
}

func unary[Req, Resp any](method string, call func(RecordServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	fullMethod := "/" + recordServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RecordServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RecordServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type GRPCHandler struct {
	records *service.RecordService
	log     *zap.Logger
}

func NewGRPCHandler(records *service.RecordService, log *zap.Logger) *GRPCHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &GRPCHandler{records: records, log: log}
}

func (h *GRPCHandler) List(ctx context.Context, req *ListRecordsRequest) (*ListRecordsResponse, error) {
	records, err := h.records.List(ctx)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &ListRecordsResponse{Records: records}, nil
}

func (h *GRPCHandler) Insert(ctx context.Context, req *InsertRecordRequest) (*InsertRecordResponse, error) {
	id, err := h.records.Insert(ctx, domain.Fields{Name: req.Name, Stock: req.Stock, Price: req.Price})
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &InsertRecordResponse{ID: id}, nil
}

func (h *GRPCHandler) Update(ctx context.Context, req *UpdateRecordRequest) (*UpdateRecordResponse, error) {
	err := h.records.Update(ctx, req.ID, domain.Fields{Name: req.Name, Stock: req.Stock, Price: req.Price})
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &UpdateRecordResponse{}, nil
}

func (h *GRPCHandler) Delete(ctx context.Context, req *DeleteRecordRequest) (*DeleteRecordResponse, error) {
	if err := h.records.Delete(ctx, req.ID); err != nil {
		return nil, h.toStatus(err)
	}
	return &DeleteRecordResponse{}, nil
}

func (h *GRPCHandler) SelectForEdit(ctx context.Context, req *SelectRecordRequest) (*SelectRecordResponse, error) {
	record, err := h.records.SelectForEdit(ctx, req.ID)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &SelectRecordResponse{Record: record}, nil
}

func (h *GRPCHandler) toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		h.log.Error("rpc failed", zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}

// RecordServiceClient calls RecordService over a connection using the JSON codec.
type RecordServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewRecordServiceClient(cc grpc.ClientConnInterface) *RecordServiceClient {
	return &RecordServiceClient{cc: cc}
}

func (c *RecordServiceClient) List(ctx context.Context, in *ListRecordsRequest, opts ...grpc.CallOption) (*ListRecordsResponse, error) {
	out := new(ListRecordsResponse)
	if err := c.invoke(ctx, "List", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RecordServiceClient) Insert(ctx context.Context, in *InsertRecordRequest, opts ...grpc.CallOption) (*InsertRecordResponse, error) {
	out := new(InsertRecordResponse)
	if err := c.invoke(ctx, "Insert", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RecordServiceClient) Update(ctx context.Context, in *UpdateRecordRequest, opts ...grpc.CallOption) (*UpdateRecordResponse, error) {
	out := new(UpdateRecordResponse)
	if err := c.invoke(ctx, "Update", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RecordServiceClient) Delete(ctx context.Context, in *DeleteRecordRequest, opts ...grpc.CallOption) (*DeleteRecordResponse, error) {
	out := new(DeleteRecordResponse)
	if err := c.invoke(ctx, "Delete", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RecordServiceClient) SelectForEdit(ctx context.Context, in *SelectRecordRequest, opts ...grpc.CallOption) (*SelectRecordResponse, error) {
	out := new(SelectRecordResponse)
	if err := c.invoke(ctx, "SelectForEdit", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RecordServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(JSONContentSubtype)}, opts...)
	return c.cc.Invoke(ctx, "/"+recordServiceName+"/"+method, in, out, opts...)
}
