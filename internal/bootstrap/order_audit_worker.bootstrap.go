package bootstrap

import (
	"context"

	"github.com/krobus00/order-service/internal/config"
	"github.com/krobus00/order-service/internal/entity"
	"github.com/krobus00/order-service/internal/infrastructure"
	"github.com/krobus00/order-service/internal/repository"
	"github.com/krobus00/order-service/internal/service/order"
	"github.com/krobus00/order-service/internal/util"
	"github.com/spf13/cobra"
)

func StartOrderAuditWorker(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ordersDB, err := infrastructure.NewPostgresConnection(ctx, config.Env.Database["orders"])
	util.ContinueOrFatal(err)
	infrastructure.StartPostgresHealthCheck(ctx, ordersDB, config.Env.Database["orders"].PingInterval)

	nc, js, err := infrastructure.NewJetstream()
	util.ContinueOrFatal(err)

	orderAuditRepo := repository.NewPostgresOrderAuditRepository(ordersDB)
	orderAuditService := order.NewOrderAuditService(orderAuditRepo, js)

	subscribers := make([]entity.Subscriber, 0)
	subscribers = append(subscribers, orderAuditService)
	for _, v := range subscribers {
		err = v.JetstreamEventSubscribe(ctx)
		util.ContinueOrFatal(err)
	}

	wait := gracefulShutdown(ctx, config.Env.GracefulShutdownTimeout, map[string]operation{
		"orders database": func(ctx context.Context) error {
			cancel()
			return ordersDB.Close()
		},
		"nats connection": func(ctx context.Context) error {
			return infrastructure.CloseJetstream(nc)
		},
	})

	<-wait
}
