package constant

const (
	OrderAuditQueueName  = "order_audit_queue"
	OrderAuditQueueGroup = "order_audit_group"

	OrderStreamName             = "orders"
	OrderStreamSubjectAll       = "orders.*"
	OrderStreamSubjectLifecycle = "orders.lifecycle"
)
