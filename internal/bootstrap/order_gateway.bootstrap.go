package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/krobus00/order-service/internal/config"
	"github.com/krobus00/order-service/internal/entity"
	httpHandler "github.com/krobus00/order-service/internal/handler/order/http"
	wsHandler "github.com/krobus00/order-service/internal/handler/order/ws"
	"github.com/krobus00/order-service/internal/infrastructure"
	"github.com/krobus00/order-service/internal/repository"
	"github.com/krobus00/order-service/internal/service/order"
	"github.com/krobus00/order-service/internal/util"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func StartOrderGateway(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient, err := infrastructure.NewRedisConnection(ctx, config.Env.Redis["orders"])
	util.ContinueOrFatal(err)
	infrastructure.StartRedisHealthCheck(ctx, redisClient, config.Env.Redis["orders"].PingInterval)

	nc, js, err := infrastructure.NewJetstream()
	util.ContinueOrFatal(err)

	ordersDB, err := infrastructure.NewPostgresConnection(ctx, config.Env.Database["orders"])
	util.ContinueOrFatal(err)
	infrastructure.StartPostgresHealthCheck(ctx, ordersDB, config.Env.Database["orders"].PingInterval)

	orderRepo := repository.NewRedisOrderRepository(redisClient)
	orderAuditRepo := repository.NewPostgresOrderAuditRepository(ordersDB)

	orderService := order.NewOrderService(orderRepo, js)
	orderAuditService := order.NewOrderAuditService(orderAuditRepo, js)

	publishers := make([]entity.Publisher, 0)
	publishers = append(publishers, orderService)
	for _, v := range publishers {
		err = v.JetstreamEventInit(ctx)
		util.ContinueOrFatal(err)
	}

	orderHTTPHandler := httpHandler.NewOrderHTTPHandler(orderService, orderAuditService)
	orderStreamHandler := wsHandler.NewOrderStreamHandler(nc)

	httpMux := http.NewServeMux()
	infrastructure.RegisterHealthEndpoints(httpMux)
	orderHTTPHandler.Register(httpMux)
	orderStreamHandler.Register(httpMux)

	httpPort := fmt.Sprintf(":%s", config.Env.Port["order_gateway_http"])
	httpServer := infrastructure.NewHTTPServerWithConfig(infrastructure.HTTPServerConfig{
		Addr:            httpPort,
		ShutdownTimeout: config.Env.GracefulShutdownTimeout,
	}, httpMux)

	go func() {
		err := httpServer.Start()
		if err != nil {
			logrus.Error(err)
		}
	}()
	logrus.Info(fmt.Sprintf("http server started on %s", httpPort))

	wait := gracefulShutdown(ctx, config.Env.GracefulShutdownTimeout, map[string]operation{
		"http": func(ctx context.Context) error {
			return httpServer.Shutdown(ctx)
		},
		"redis connection": func(ctx context.Context) error {
			cancel()
			return redisClient.Close()
		},
		"orders database": func(ctx context.Context) error {
			return ordersDB.Close()
		},
		"nats connection": func(ctx context.Context) error {
			return infrastructure.CloseJetstream(nc)
		},
	})

	<-wait
}
