package entity

import "context"

// Publisher owns a jetstream stream and is responsible for creating or
// updating it before the first publish.
type Publisher interface {
	JetstreamEventInit(ctx context.Context) error
}

type Subscriber interface {
	JetstreamEventSubscribe(ctx context.Context) error
}
