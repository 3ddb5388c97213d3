package client

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"stayworks/pkg/logger"
)

// Client bundles the external connections a service holds for its lifetime.
// Redis is optional; services that never touch the capacity display cache
// leave it nil.
type Client struct {
	Mongo *MongoClient
	Redis *redis.Client
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, mongoConnTimeout time.Duration) {
	c.Mongo = NewMongoClient(log, mongoURI, mongoConnTimeout)
}

func (c *Client) SetRedis(log *logger.Logger, addr string, db int) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to ping Redis", "error", err, "addr", addr)
	}

	log.Info("Successfully connected to Redis", "addr", addr, "db", db)
	c.Redis = rdb
}

func (c *Client) GracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if c.Mongo != nil && c.Mongo.Client != nil {
		_ = c.Mongo.Client.Disconnect(ctx)
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
