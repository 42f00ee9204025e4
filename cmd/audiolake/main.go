package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/audiolake/audiolake/pkg/etl"
	"github.com/audiolake/audiolake/pkg/io/jsonlio"
	"github.com/audiolake/audiolake/pkg/profile"
)

var (
	version = "0.1.0-dev"
)

func main() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	configPath := flag.String("config", "", "Path to job config (.toml or .yaml)")
	profileGlob := flag.String("profile", "", "Profile JSONL input matching this glob instead of running the job")
	chunkSize := flag.Int("chunk-size", 4096, "Rows per chunk when profiling")
	topK := flag.Int("topk", 5, "Top string values to report when profiling")
	statsPath := flag.String("stats", "etl_stats.json", "Where to write the run report")
	flag.Parse()

	if *showVersion {
		fmt.Println("audiolake", version)
		return
	}

	if *profileGlob != "" {
		if err := runProfile(*profileGlob, *chunkSize, *topK); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "no config provided; try --config <file> or --version")
		os.Exit(2)
	}
	if err := run(*configPath, *statsPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, statsPath string) error {
	cfg, err := etl.LoadConfig(configPath)
	if err != nil {
		return err
	}
	sess, err := etl.NewSession(cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := context.Background()
	start := time.Now()

	input, cleanIn, err := sess.StageInput(ctx)
	if err != nil {
		return err
	}
	defer cleanIn()
	output, cleanOut, err := sess.StageOutput()
	if err != nil {
		return err
	}
	defer cleanOut()

	var stats etl.RunStats
	if err := etl.ProcessSongData(ctx, sess, input, output, &stats); err != nil {
		return err
	}
	if err := etl.ProcessLogData(ctx, sess, input, output, &stats); err != nil {
		return err
	}
	if err := sess.PublishOutput(ctx, output); err != nil {
		return err
	}

	stats.TotalExecutionTime = time.Since(start).String()
	if err := stats.WriteFile(statsPath); err != nil {
		return fmt.Errorf("write run report: %w", err)
	}
	sess.Log.Info("job complete",
		zap.String("duration", stats.TotalExecutionTime),
		zap.Int("songplays", stats.SongplaysWritten))
	return nil
}

func runProfile(pattern string, chunkSize, topK int) error {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files match %q", pattern)
	}
	sort.Strings(paths)
	sr, err := jsonlio.NewStreamReader(paths, chunkSize)
	if err != nil {
		return err
	}
	c := profile.NewCollector(sr.Schema(), topK)
	for {
		f, err := sr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		c.ConsumeFrame(f)
	}
	fmt.Print(c.ReportText())
	return nil
}
