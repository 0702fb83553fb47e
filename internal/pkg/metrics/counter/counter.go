package counter

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pixeldodo/pixeldodo/internal/pkg/cache"
	"github.com/pixeldodo/pixeldodo/internal/pkg/database"
)

const generationsKey = "generation:counters:daily"

// AddGeneration increments the pending generation counter for today in Redis
func AddGeneration() error {
	ctx := context.Background()
	field := time.Now().Format("2006-01-02")
	return cache.GetClient().HIncrBy(ctx, generationsKey, field, 1).Err()
}

// FlushAll flushes the pending generation counters to the database
func FlushAll() error {
	return flushGenerationCounters()
}

// flushGenerationCounters drains the Redis hash atomically and applies batched
// increments to the generation_stats table.
// Uses RENAME to a temporary key for atomic drain without losing in-flight increments.
func flushGenerationCounters() error {
	ctx := context.Background()
	rdb := cache.GetClient()

	// Atomically move the hash to a temp key for draining
	tmpKey := fmt.Sprintf("%s:tmp:%d", generationsKey, time.Now().UnixNano())
	if err := rdb.Do(ctx, "RENAME", generationsKey, tmpKey).Err(); err != nil {
		// If key does not exist, nothing to flush
		if strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil
		}
		// Some Redis libs return redis.Nil; treat as empty
		if err.Error() == "redis: nil" {
			return nil
		}
		return err
	}

	// Ensure cleanup of tmpKey even if later steps fail
	defer rdb.Del(ctx, tmpKey)

	data, err := rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	type pair struct {
		date string
		inc  int64
	}
	pairs := make([]pair, 0, len(data))
	for k, v := range data {
		if _, perr := time.Parse("2006-01-02", k); perr != nil {
			continue
		}
		inc, ierr := strconv.ParseInt(v, 10, 64)
		if ierr != nil || inc == 0 {
			continue
		}
		pairs = append(pairs, pair{date: k, inc: inc})
	}
	if len(pairs) == 0 {
		return nil
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].date < pairs[j].date })

	// Compose SQL
	// INSERT ... ON DUPLICATE KEY UPDATE keeps the per-day upsert in one round trip
	var builder strings.Builder
	args := make([]interface{}, 0, len(pairs)*2)
	builder.WriteString("INSERT INTO generation_stats (date, count) VALUES ")
	for i, p := range pairs {
		if i > 0 {
			builder.WriteString(",")
		}
		builder.WriteString("(?, ?)")
		args = append(args, p.date, p.inc)
	}
	builder.WriteString(" ON DUPLICATE KEY UPDATE count = count + VALUES(count)")

	db := database.GetDB()
	if err := db.Exec(builder.String(), args...).Error; err != nil {
		return err
	}
	return nil
}
