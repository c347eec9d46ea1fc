// luminactl is the operator companion binary: ad-hoc job management against
// the running deployment's Redis queue.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/lumina-spa/lumina/cmd/luminactl/cli"
)

func main() {
	redisAddr := flag.String("redis", envOr("REDIS_ADDR", "127.0.0.1:6379"), "redis address")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	jobsCLI, err := cli.NewJobsCLI(*redisAddr)
	if err != nil {
		log.Fatalf("init jobs cli: %v", err)
	}
	defer func() {
		_ = jobsCLI.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch args[0] {
	case "sweep":
		info, err := jobsCLI.TriggerSweep(ctx)
		if err != nil {
			log.Fatalf("trigger sweep: %v", err)
		}
		fmt.Printf("enqueued %s id=%s\n", info.Type, info.ID)
	case "remind":
		if len(args) < 2 {
			log.Fatal("remind requires an appointment id")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			log.Fatalf("invalid appointment id: %v", err)
		}
		info, err := jobsCLI.TriggerReminder(ctx, id, time.Now().Add(2*time.Hour))
		if err != nil {
			log.Fatalf("trigger reminder: %v", err)
		}
		fmt.Printf("enqueued %s id=%s\n", info.Type, info.ID)
	case "queue":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			log.Fatalf("inspect queue: %v", err)
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
	case "scheduled":
		tasks, err := jobsCLI.ListScheduled(ctx, 20)
		if err != nil {
			log.Fatalf("list scheduled: %v", err)
		}
		for _, t := range tasks {
			fmt.Printf("%s id=%s next=%s\n", t.Type, t.ID, t.NextProcessAt.Format(time.RFC3339))
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: luminactl [-redis addr] <sweep|remind <id>|queue|scheduled>")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
