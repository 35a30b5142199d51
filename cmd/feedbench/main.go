// feedbench 构造关注图与推文，对比有无 Redis 缓存时的信息流组装延迟
//
// 环境变量:
//
//	DATABASE_URL  postgres DSN（为空时使用 sqlite 内存库）
//	REDIS_ADDR    Redis 地址（为空时跳过缓存轮次）
//	USERS         用户数，默认 2000
//	FOLLOWS       每个用户关注数，默认 50
//	TWEETS        每个用户推文数，默认 5
//	READS         读取次数，默认 2000
//	CONC          并发读取数，默认 8
//	PAGE          分页大小，默认 20
package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/config"
	"github.com/d60-Lab/social-feed/internal/cache"
	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

func openDB() *gorm.DB {
	cfg := config.DatabaseConfig{Driver: "sqlite", DSN: "file:feedbench?mode=memory&cache=shared", LogLevel: "silent"}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg = config.DatabaseConfig{Driver: "postgres", DSN: dsn, MaxOpenConns: 32, MaxIdleConns: 16, LogLevel: "silent"}
	}
	db := must(database.Open(cfg))
	if cfg.Driver == "postgres" {
		for _, table := range []string{"likes", "user_to_user", "tweets", "users"} {
			mustDo(db.Exec("DROP TABLE IF EXISTS " + table + " CASCADE").Error)
		}
	}
	mustDo(database.Migrate(db))
	return db
}

// seed 随机关注图，每个用户 follows 条出边、tweets 条推文，每条推文 0-3 个赞
func seed(db *gorm.DB, users, follows, tweets int) []int64 {
	rows := make([]model.User, users)
	for i := range rows {
		rows[i] = model.User{
			Username:       fmt.Sprintf("bench_%d", i),
			Email:          fmt.Sprintf("bench_%d@example.com", i),
			HashedPassword: "x",
			APIKey:         uuid.NewString(),
			EmailCode:      model.EmailCodeEmpty,
			IsActive:       true,
			IsVerified:     true,
		}
	}
	mustDo(db.CreateInBatches(&rows, 500).Error)
	ids := make([]int64, users)
	for i := range rows {
		ids[i] = rows[i].ID
	}

	rng := rand.New(rand.NewSource(42))
	base := time.Now().UTC().Add(-time.Duration(users*tweets) * time.Second)

	edges := make([]model.Follow, 0, users*follows)
	for i, id := range ids {
		seen := map[int]bool{i: true}
		for len(seen) <= follows && len(seen) < users {
			j := rng.Intn(users)
			if seen[j] {
				continue
			}
			seen[j] = true
			edges = append(edges, model.Follow{FollowerID: id, FollowingID: ids[j], CreatedAt: base})
		}
	}
	mustDo(db.CreateInBatches(&edges, 1000).Error)

	msgs := make([]model.Message, 0, users*tweets)
	for i, id := range ids {
		for k := 0; k < tweets; k++ {
			msgs = append(msgs, model.Message{
				Content:   fmt.Sprintf("tweet %d from %d", k, i),
				AuthorID:  id,
				CreatedAt: base.Add(time.Duration(rng.Intn(users*tweets)) * time.Second),
			})
		}
	}
	mustDo(db.Omit("Author").CreateInBatches(&msgs, 1000).Error)

	likes := make([]model.Like, 0, len(msgs))
	for _, m := range msgs {
		seen := map[int]bool{}
		for n := rng.Intn(4); n > 0; n-- {
			j := rng.Intn(users)
			if seen[j] {
				continue
			}
			seen[j] = true
			likes = append(likes, model.Like{UserID: ids[j], MessageID: m.ID, CreatedAt: base})
		}
	}
	if len(likes) > 0 {
		mustDo(db.Omit("User", "Message").CreateInBatches(&likes, 1000).Error)
	}
	fmt.Printf("seeded users=%d follows=%d tweets=%d likes=%d\n", users, len(edges), len(msgs), len(likes))
	return ids
}

// run 并发读取 reads 次信息流，读者从 ids 中轮转
func run(ctx context.Context, feeds service.FeedService, ids []int64, reads, conc, page int) ([]time.Duration, time.Duration) {
	jobs := make(chan int64, reads)
	for i := 0; i < reads; i++ {
		jobs <- ids[i%len(ids)]
	}
	close(jobs)

	var mu sync.Mutex
	recs := make([]time.Duration, 0, reads)
	var wg sync.WaitGroup
	t0 := time.Now()
	for w := 0; w < conc; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for uid := range jobs {
				st := time.Now()
				_, err := feeds.AssembleFeed(ctx, uid, model.Page{Limit: page})
				d := time.Since(st)
				if err != nil {
					fmt.Fprintf(os.Stderr, "feed %d: %v\n", uid, err)
					continue
				}
				mu.Lock()
				recs = append(recs, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return recs, time.Since(t0)
}

func report(name string, recs []time.Duration, total time.Duration) {
	n := len(recs)
	if n == 0 {
		fmt.Printf("%-12s no samples\n", name)
		return
	}
	fmt.Printf("%-12s reads=%d total=%v qps=%.0f p50=%v p95=%v p99=%v\n",
		name, n, total, float64(n)/total.Seconds(), pct(recs, 0.50), pct(recs, 0.95), pct(recs, 0.99))
}

func main() {
	ctx := context.Background()
	users := envInt("USERS", 2000)
	follows := envInt("FOLLOWS", 50)
	tweets := envInt("TWEETS", 5)
	reads := envInt("READS", 2000)
	conc := envInt("CONC", 8)
	page := envInt("PAGE", 20)
	// 读者集合小于总读取数，缓存轮次才有命中
	readers := users / 10
	if readers == 0 {
		readers = 1
	}

	db := openDB()
	defer database.Close(db)
	ids := seed(db, users, follows, tweets)
	store := repository.NewStore(db)

	fmt.Printf("USERS=%d FOLLOWS=%d TWEETS=%d READS=%d CONC=%d PAGE=%d\n", users, follows, tweets, reads, conc, page)

	recs, total := run(ctx, service.NewFeedService(store, nil), ids[:readers], reads, conc, page)
	report("db-only", recs, total)

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		fmt.Println("REDIS_ADDR not set, skipping cached run")
		return
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	mustDo(client.Ping(ctx).Err())

	feedCache := cache.NewFeedCache(client, 10*time.Minute)
	feedCache.InvalidateUsers(ctx, ids[:readers]...)
	cached := service.NewFeedService(store, feedCache)

	recs, total = run(ctx, cached, ids[:readers], reads, conc, page)
	report("redis-cache", recs, total)

	// 发推后作者粉丝的缓存被清掉，下一次读取回源
	messages := service.NewMessageService(store, feedCache, service.DefaultMaxLength)
	for _, id := range ids[:readers] {
		_, err := messages.Create(ctx, id, "fresh tweet")
		mustDo(err)
	}
	recs, total = run(ctx, cached, ids[:readers], reads, conc, page)
	report("after-write", recs, total)
}
