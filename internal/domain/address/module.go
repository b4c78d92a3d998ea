package address

import (
	"shop_backend/internal/domain/address/handler"
	"shop_backend/internal/domain/address/repository"
	"shop_backend/internal/domain/address/service"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/internal/pkg/registry"
)

// AddressModule 收货地址模块
type AddressModule struct{}

func init() {
	registry.Register(&AddressModule{})
}

func (m *AddressModule) Name() string {
	return "address"
}

func (m *AddressModule) Priority() int {
	return 10
}

func (m *AddressModule) Init(ctx *registry.ModuleContext) error {
	h := handler.NewAddressHandler(service.NewAddressService(repository.NewAddressRepository(ctx.DB)))

	g := ctx.Router.Group("/addresses")
	g.Use(middleware.AuthMiddleware())
	{
		g.POST("", h.CreateAddress)
		g.GET("", h.ListAddresses)
	}
	return nil
}
