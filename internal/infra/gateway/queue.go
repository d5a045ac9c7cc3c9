package gateway

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

// MailQueue is where rendered mail jobs are handed to the mail sender.
type MailQueue interface {
	Publish(ctx context.Context, body []byte) error
	Close() error
}

// AMQPQueue publishes to a durable RabbitMQ queue.
type AMQPQueue struct {
	conn  *amqp.Connection
	chn   *amqp.Channel
	queue string
}

func NewAMQPQueue(url, queue string) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	chn, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	_, err = chn.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		chn.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPQueue{conn: conn, chn: chn, queue: queue}, nil
}

func (q *AMQPQueue) Publish(ctx context.Context, body []byte) error {
	return q.chn.PublishWithContext(
		ctx,
		"",      // exchange
		q.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (q *AMQPQueue) Close() error {
	if err := q.chn.Close(); err != nil {
		return err
	}
	return q.conn.Close()
}

// RedisQueue pushes onto a redis list. Used when no broker is configured.
type RedisQueue struct {
	rdb *redis.Client
	key string
}

func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: key}
}

func (q *RedisQueue) Publish(ctx context.Context, body []byte) error {
	return q.rdb.RPush(ctx, q.key, body).Err()
}

func (q *RedisQueue) Close() error {
	return nil
}
