package produce

import amqp "github.com/rabbitmq/amqp091-go"

type Produce struct {
	RevisionService *RevisionProduceService
}

var produceInstance *Produce

func InitProduce(channel *amqp.Channel) *Produce {
	if produceInstance != nil {
		return produceInstance
	}

	revisionService := InitRevisionProduceService(channel)
	if revisionService == nil {
		panic("Failed to initialize Revision produce service")
	}

	produceInstance = &Produce{
		RevisionService: revisionService,
	}

	return produceInstance
}

func GetProduce() *Produce {
	if produceInstance == nil {
		panic("Produce not initialized. Call InitProduce() first.")
	}
	return produceInstance
}
