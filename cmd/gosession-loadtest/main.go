package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/store/memstore"
	"github.com/MrEthical07/goSession/store/redisstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type accountState struct {
	email   string
	refresh string
	access  string
	mu      sync.Mutex
}

func main() {
	var (
		accounts    = flag.Int("accounts", 1000, "number of accounts to seed")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 50000, "operations per phase (verify + refresh)")
		cost        = flag.Int("bcrypt-cost", 4, "bcrypt cost for seeding (low keeps seeding fast)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or in-memory store is used")
	)
	flag.Parse()

	if *accounts <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "accounts, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	store, cleanup, err := buildStore(*redisAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "store init failed: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	cfg := goSession.DefaultConfig()
	cfg.Token.AccessSecret = []byte("loadtest-access-secret")
	cfg.Token.RefreshSecret = []byte("loadtest-refresh-secret")
	cfg.Password.Cost = *cost
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	controller, err := goSession.New().
		WithConfig(cfg).
		WithCredentialStore(store).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "controller build failed: %v\n", err)
		os.Exit(1)
	}
	defer controller.Close()

	states := make([]accountState, *accounts)
	fmt.Printf("seeding %d accounts...\n", *accounts)
	startSeed := time.Now()
	for i := 0; i < *accounts; i++ {
		email := fmt.Sprintf("user-%d@loadtest.local", i)
		session, err := controller.SignUp(ctx, goSession.SignUpRequest{
			Name:     fmt.Sprintf("User %d", i),
			Email:    email,
			Password: "loadtest-password",
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed signup failed: %v\n", err)
			os.Exit(1)
		}
		states[i] = accountState{
			email:   email,
			refresh: session.RefreshToken,
			access:  session.AccessToken,
		}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	verifyStats := runVerifyPhase(ctx, controller, states, *ops, *concurrency)
	refreshStats := runRefreshPhase(ctx, controller, states, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("verify", verifyStats)
	printStats("refresh", refreshStats)

	snapshot := controller.MetricsSnapshot()
	fmt.Printf("metrics: verify_ok=%d refresh_ok=%d pairs_issued=%d\n",
		snapshot.Counters[goSession.MetricVerifySuccess],
		snapshot.Counters[goSession.MetricRefreshSuccess],
		snapshot.Counters[goSession.MetricPairIssued],
	)
}

func buildStore(addr string) (goSession.CredentialStore, func(), error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr == "" {
		fmt.Println("using in-memory store")
		return memstore.New(), func() {}, nil
	}

	var cleanup func()
	if addr == "miniredis" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, err
		}
		addr = mr.Addr()
		cleanup = mr.Close
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		fmt.Printf("using redis at %s\n", addr)
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{addr},
	})
	store, err := redisstore.New(client)
	if err != nil {
		return nil, nil, err
	}
	inner := cleanup
	return store, func() {
		_ = client.Close()
		if inner != nil {
			inner()
		}
	}, nil
}

func runVerifyPhase(ctx context.Context, controller *goSession.Controller, states []accountState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				t0 := time.Now()
				_, err := controller.VerifyAccess(ctx, states[idx].access)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runRefreshPhase(ctx context.Context, controller *goSession.Controller, states []accountState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				state := &states[idx]

				state.mu.Lock()
				t0 := time.Now()
				session, err := controller.Refresh(ctx, state.refresh, goSession.SourceCookie)
				d := time.Since(t0)
				if err == nil {
					state.refresh = session.RefreshToken
					state.access = session.AccessToken
				} else {
					atomic.AddInt64(&failures, 1)
				}
				state.mu.Unlock()

				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
