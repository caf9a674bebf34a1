package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/slideshare/cache"
	"github.com/briangreenhill/slideshare/internal/config"
	"github.com/briangreenhill/slideshare/pkg/slideshare"
)

const usage = `Usage: slideshare <command> [options]
Commands:
  get <id|url>                       Show one slideshow
  user [-offset n] [-limit n] <username>
  tag [-offset n] [-limit n] <tag>...  Several tags match slideshows carrying all of them
  group [-offset n] [-limit n] <group>
  search <query>
  upload -title t [-description d] [-tag t]... [-private] <file>
  help, version
Environment:
  SLIDESHARE_API_KEY, SLIDESHARE_SHARED_SECRET  required
  SLIDESHARE_USERNAME, SLIDESHARE_PASSWORD      required for upload
  CACHE_DIR                                     file cache location (default ~/.slideshare_cache)
`

var errUsage = errors.New("usage")

func main() {
	if err := runCLI(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCLI(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command", errUsage)
	}
	switch args[0] {
	case "help", "--help", "-h":
		_, err := fmt.Fprint(out, usage)
		return err
	case "version", "--version", "-v":
		_, err := fmt.Fprintln(out, "slideshare v0.1.0")
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	return run(ctx, client, args, out)
}

func newClient(cfg *config.Config) (*slideshare.Client, error) {
	if !cfg.HasCredentials() {
		return nil, errors.New("SLIDESHARE_API_KEY and SLIDESHARE_SHARED_SECRET must be set")
	}

	level := zerolog.WarnLevel
	if l, err := cfg.Level(); err == nil && l < level {
		level = l
	}
	opts := []slideshare.Option{
		slideshare.WithLogger(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()),
		slideshare.WithCredentials(cfg.SlideShare.Username, cfg.SlideShare.Password),
	}
	if cfg.SlideShare.BaseURL != "" {
		opts = append(opts, slideshare.WithBaseURL(cfg.SlideShare.BaseURL))
	}
	switch {
	case cfg.Cache.Backend == config.CacheNone:
	case cfg.Cache.Dir != "":
		fc, err := cache.NewFileCacheAt(cfg.Cache.Dir, cfg.Cache.TTL)
		if err != nil {
			return nil, err
		}
		opts = append(opts, slideshare.WithCache(fc, cfg.Cache.TTL))
	default:
		opts = append(opts, slideshare.WithDefaultCache())
	}
	return slideshare.New(cfg.SlideShare.APIKey, cfg.SlideShare.SharedSecret, opts...)
}

// run executes one command against client and prints the result as JSON.
func run(ctx context.Context, client *slideshare.Client, args []string, out io.Writer) error {
	cmd, rest := args[0], args[1:]

	var result any
	var err error
	switch cmd {
	case "get":
		if len(rest) != 1 {
			return fmt.Errorf("%w: get takes one id or url", errUsage)
		}
		if id, perr := strconv.ParseInt(rest[0], 10, 64); perr == nil {
			result, err = client.GetSlideshow(ctx, id)
		} else {
			result, err = client.GetSlideshowByURL(ctx, rest[0])
		}

	case "user", "tag", "group":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		offset := fs.Int("offset", 0, "results to skip")
		limit := fs.Int("limit", 0, "maximum results")
		if perr := fs.Parse(rest); perr != nil {
			return fmt.Errorf("%w: %v", errUsage, perr)
		}
		if fs.NArg() == 0 {
			return fmt.Errorf("%w: %s needs a value", errUsage, cmd)
		}
		var lo []slideshare.ListOption
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "offset":
				lo = append(lo, slideshare.WithOffset(*offset))
			case "limit":
				lo = append(lo, slideshare.WithLimit(*limit))
			}
		})
		switch {
		case cmd == "user":
			result, err = client.GetSlideshowsByUsername(ctx, fs.Arg(0), lo...)
		case cmd == "group":
			result, err = client.GetSlideshowsByGroup(ctx, fs.Arg(0), lo...)
		case fs.NArg() == 1:
			result, err = client.GetSlideshowsByTag(ctx, fs.Arg(0), lo...)
		default:
			result, err = client.GetSlideshowsByTags(ctx, fs.Args(), lo...)
		}

	case "search":
		if len(rest) == 0 {
			return fmt.Errorf("%w: search needs a query", errUsage)
		}
		result, err = client.Search(ctx, strings.Join(rest, " "))

	case "upload":
		result, err = upload(ctx, client, rest)

	default:
		return fmt.Errorf("%w: unknown command: %s", errUsage, cmd)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

type tagList []string

func (t *tagList) String() string     { return strings.Join(*t, ",") }
func (t *tagList) Set(v string) error { *t = append(*t, v); return nil }

func upload(ctx context.Context, client *slideshare.Client, args []string) (*slideshare.Slideshow, error) {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	title := fs.String("title", "", "slideshow title")
	description := fs.String("description", "", "slideshow description")
	private := fs.Bool("private", false, "keep the source file from being downloaded")
	var tags tagList
	fs.Var(&tags, "tag", "tag (repeatable)")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("%w: upload takes one file", errUsage)
	}

	show := &slideshare.Slideshow{Title: *title, Description: *description, Filename: fs.Arg(0)}
	for _, t := range tags {
		show.AddTag(t)
	}
	return client.Upload(ctx, show, !*private)
}
