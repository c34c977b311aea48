package cache

import (
	"github.com/gomodule/redigo/redis"
)

func Del(key string, conn redis.Conn) error {
	_, err := conn.Do("DEL", key)
	return err
}

// HSETStruct writes every redis-tagged field of v into the hash at key.
func HSETStruct(key string, v interface{}, conn redis.Conn) error {
	_, err := conn.Do("HSET", redis.Args{}.Add(key).AddFlat(v)...)
	return err
}

func EXPIRE(key string, ttlSeconds int, conn redis.Conn) error {
	_, err := conn.Do("EXPIRE", key, ttlSeconds)
	return err
}

func SADD(key string, member string, conn redis.Conn) error {
	_, err := conn.Do("SADD", key, member)
	return err
}

func SREM(key string, member string, conn redis.Conn) error {
	_, err := conn.Do("SREM", key, member)
	return err
}

func SMEMBERS(key string, conn redis.Conn) ([]string, error) {
	return redis.Strings(conn.Do("SMEMBERS", key))
}
