/*
Copyright © 2026 Michael Putera Wardana <michaelputeraw@gmail.com>
*/
package cmd

import (
	"github.com/krobus00/order-service/internal/bootstrap"
	"github.com/spf13/cobra"
)

// orderAuditWorkerCmd represents the orderAuditWorker command
var orderAuditWorkerCmd = &cobra.Command{
	Use:   "order-audit-worker",
	Short: "Start the Order Audit Worker",
	Long: `The Order Audit Worker consumes order lifecycle events from jetstream
and persists them as an append-only audit trail in postgres.`,
	Run: bootstrap.StartOrderAuditWorker,
}

func init() {
	rootCmd.AddCommand(orderAuditWorkerCmd)
}
