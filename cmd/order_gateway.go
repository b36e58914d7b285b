/*
Copyright © 2026 Michael Putera Wardana <michaelputeraw@gmail.com>
*/
package cmd

import (
	"github.com/krobus00/order-service/internal/bootstrap"
	"github.com/spf13/cobra"
)

// orderGatewayCmd represents the orderGateway command
var orderGatewayCmd = &cobra.Command{
	Use:   "order-gateway",
	Short: "Start the Order Gateway service",
	Long: `The Order Gateway exposes the order lifecycle over HTTP: create, get,
update and cancel, plus a websocket stream of order lifecycle events.
Order records live in redis; updates are applied as one atomic delta
batch so price, quote_amount and base_amount always move together.`,
	Run: bootstrap.StartOrderGateway,
}

func init() {
	rootCmd.AddCommand(orderGatewayCmd)
}
