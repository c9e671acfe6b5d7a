package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// FinanceServiceName is the fully qualified gRPC service name
const FinanceServiceName = "networth.v1.FinanceService"

// Method names of FinanceService
const (
	MethodComputeProfit           = "ComputeProfit"
	MethodComputeDividendMetrics  = "ComputeDividendMetrics"
	MethodListDividendPayouts     = "ListDividendPayouts"
	MethodComputeLiabilityMetrics = "ComputeLiabilityMetrics"
	MethodRecordManualPayment     = "RecordManualPayment"
	MethodExecutePaymentRules     = "ExecutePaymentRules"
	MethodCreatePaymentRule       = "CreatePaymentRule"
	MethodCreateTransaction       = "CreateTransaction"
	MethodUpdateMarketValue       = "UpdateMarketValue"
	MethodGetNetWorth             = "GetNetWorth"
	MethodGetPortfolioDividends   = "GetPortfolioDividends"

	MethodCreateAsset       = "CreateAsset"
	MethodListAssets        = "ListAssets"
	MethodDeleteAsset       = "DeleteAsset"
	MethodListTransactions  = "ListTransactions"
	MethodDeleteTransaction = "DeleteTransaction"
	MethodComputeProfits    = "ComputeProfits"
	MethodSyncDividends     = "SyncDividends"
	MethodCreateLiability   = "CreateLiability"
	MethodListLiabilities   = "ListLiabilities"
	MethodUpdateLiability   = "UpdateLiability"
	MethodDeleteLiability   = "DeleteLiability"
	MethodListPaymentRules  = "ListPaymentRules"
	MethodUpdatePaymentRule = "UpdatePaymentRule"
	MethodDeletePaymentRule = "DeletePaymentRule"
)

// FinanceServiceServer is the server API for FinanceService.
// Requests and responses are free-form structs keyed by snake_case field names.
type FinanceServiceServer interface {
	ComputeProfit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ComputeDividendMetrics(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListDividendPayouts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ComputeLiabilityMetrics(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordManualPayment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExecutePaymentRules(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreatePaymentRule(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateMarketValue(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetNetWorth(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPortfolioDividends(context.Context, *structpb.Struct) (*structpb.Struct, error)

	CreateAsset(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAssets(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteAsset(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTransactions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ComputeProfits(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SyncDividends(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateLiability(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListLiabilities(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateLiability(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteLiability(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListPaymentRules(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdatePaymentRule(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeletePaymentRule(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(FinanceServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(FinanceServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + FinanceServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(FinanceServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// FinanceServiceDesc is the grpc.ServiceDesc for FinanceService
var FinanceServiceDesc = grpc.ServiceDesc{
	ServiceName: FinanceServiceName,
	HandlerType: (*FinanceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler(MethodComputeProfit, FinanceServiceServer.ComputeProfit),
		unaryHandler(MethodComputeDividendMetrics, FinanceServiceServer.ComputeDividendMetrics),
		unaryHandler(MethodListDividendPayouts, FinanceServiceServer.ListDividendPayouts),
		unaryHandler(MethodComputeLiabilityMetrics, FinanceServiceServer.ComputeLiabilityMetrics),
		unaryHandler(MethodRecordManualPayment, FinanceServiceServer.RecordManualPayment),
		unaryHandler(MethodExecutePaymentRules, FinanceServiceServer.ExecutePaymentRules),
		unaryHandler(MethodCreatePaymentRule, FinanceServiceServer.CreatePaymentRule),
		unaryHandler(MethodCreateTransaction, FinanceServiceServer.CreateTransaction),
		unaryHandler(MethodUpdateMarketValue, FinanceServiceServer.UpdateMarketValue),
		unaryHandler(MethodGetNetWorth, FinanceServiceServer.GetNetWorth),
		unaryHandler(MethodGetPortfolioDividends, FinanceServiceServer.GetPortfolioDividends),
		unaryHandler(MethodCreateAsset, FinanceServiceServer.CreateAsset),
		unaryHandler(MethodListAssets, FinanceServiceServer.ListAssets),
		unaryHandler(MethodDeleteAsset, FinanceServiceServer.DeleteAsset),
		unaryHandler(MethodListTransactions, FinanceServiceServer.ListTransactions),
		unaryHandler(MethodDeleteTransaction, FinanceServiceServer.DeleteTransaction),
		unaryHandler(MethodComputeProfits, FinanceServiceServer.ComputeProfits),
		unaryHandler(MethodSyncDividends, FinanceServiceServer.SyncDividends),
		unaryHandler(MethodCreateLiability, FinanceServiceServer.CreateLiability),
		unaryHandler(MethodListLiabilities, FinanceServiceServer.ListLiabilities),
		unaryHandler(MethodUpdateLiability, FinanceServiceServer.UpdateLiability),
		unaryHandler(MethodDeleteLiability, FinanceServiceServer.DeleteLiability),
		unaryHandler(MethodListPaymentRules, FinanceServiceServer.ListPaymentRules),
		unaryHandler(MethodUpdatePaymentRule, FinanceServiceServer.UpdatePaymentRule),
		unaryHandler(MethodDeletePaymentRule, FinanceServiceServer.DeletePaymentRule),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterFinanceServiceServer registers srv on s
func RegisterFinanceServiceServer(s grpc.ServiceRegistrar, srv FinanceServiceServer) {
	s.RegisterService(&FinanceServiceDesc, srv)
}

// FinanceServiceClient calls FinanceService methods over a client connection
type FinanceServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewFinanceServiceClient creates a client bound to cc
func NewFinanceServiceClient(cc grpc.ClientConnInterface) *FinanceServiceClient {
	return &FinanceServiceClient{cc: cc}
}

// Call invokes a unary method by name
func (c *FinanceServiceClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+FinanceServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
