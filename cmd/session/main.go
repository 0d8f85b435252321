package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/basaknazik/itudam/internal/catalog"
	"github.com/basaknazik/itudam/internal/config"
	"github.com/basaknazik/itudam/internal/domain"
	"github.com/basaknazik/itudam/internal/schedule"
	syncpkg "github.com/basaknazik/itudam/internal/sync"
)

func main() {
	var (
		user  = flag.String("user", "", "user id for schedule persistence")
		watch = flag.Bool("watch", false, "reload the catalog artifact when it changes on disk")
	)
	flag.Parse()

	if *user == "" {
		log.Fatal("missing -user")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	cat, err := catalog.LoadArtifact(cfg.CatalogPath)
	if err != nil {
		logger.Fatal("load catalog", zap.String("path", cfg.CatalogPath), zap.Error(err))
	}
	logger.Info("catalog loaded",
		zap.Int("courses", cat.Len()),
		zap.Int("subjects", len(cat.Subjects())))

	// The watch goroutine swaps the catalog under the REPL.
	var catRef atomic.Pointer[catalog.Catalog]
	catRef.Store(cat)

	store := schedule.NewStore(cat)
	store.OnRender(printSchedule)

	var remote syncpkg.RemoteStore
	if cfg.RemoteBaseURL != "" {
		remote = syncpkg.NewClient(cfg.RemoteBaseURL, cfg.RemoteToken)
	}
	local := &syncpkg.FileStore{Dir: cfg.DataDir, Namespace: cfg.Namespace}

	mgr := syncpkg.New(store, local, remote, logger, cfg.Debounce)
	mgr.OnStatus(func(s syncpkg.Status) {
		fmt.Printf("[sync] %s\n", s)
	})
	mgr.Begin(ctx, *user)

	if *watch {
		go func() {
			err := catalog.Watch(ctx, cfg.CatalogPath, logger, func(fresh *catalog.Catalog) {
				catRef.Store(fresh)
				store.SetResolver(fresh)
				fmt.Printf("[catalog] reloaded: %d courses\n", fresh.Len())
			})
			if err != nil && ctx.Err() == nil {
				logger.Warn("catalog watch stopped", zap.Error(err))
			}
		}()
	}

	repl(store, mgr, catRef.Load)
}

func repl(store *schedule.Store, mgr *syncpkg.Manager, current func() *catalog.Catalog) {
	sc := bufio.NewScanner(os.Stdin)
	fmt.Println("commands: add <crn> | rm <crn> | toggle <crn> | find <query> | browse <subject> [senior] [clean] | subjects | show | crns | quit")

	for {
		fmt.Print("> ")
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]
		cat := current()

		switch cmd {
		case "add":
			for _, crn := range args {
				if !store.Select(crn) {
					fmt.Printf("unknown CRN %s\n", crn)
				}
			}
		case "rm":
			for _, crn := range args {
				store.Deselect(crn)
			}
		case "toggle":
			for _, crn := range args {
				store.Retype(crn)
			}
		case "find":
			if len(args) == 0 {
				fmt.Println("usage: find <query>")
				continue
			}
			selected := make(map[string]bool)
			for crn := range store.Snapshot() {
				selected[crn] = true
			}
			printCourses(cat.Search(strings.Join(args, " "), selected))
		case "browse":
			opts := catalog.FilterOptions{Selected: store.Courses()}
			for _, a := range args {
				switch a {
				case "senior":
					opts.ShowSenior = true
				case "clean":
					opts.CleanOnly = true
				default:
					opts.Subject = a
				}
			}
			printCourses(cat.Filter(opts))
		case "subjects":
			fmt.Println(strings.Join(cat.Subjects(), " "))
		case "show":
			printSchedule(store.Snapshot(), store.Conflicts())
		case "crns":
			fmt.Println(strings.Join(store.FixedCRNs(), " "))
		case "quit", "exit":
			mgr.Flush()
			return
		default:
			fmt.Printf("unknown command %q\n", cmd)
		}
	}
	mgr.Flush()
}

func printSchedule(snap schedule.Snapshot, conflicts schedule.ConflictSet) {
	if len(snap) == 0 {
		fmt.Println("(empty schedule)")
		return
	}
	for _, crn := range sortedCRNs(snap) {
		c := snap[crn]
		mark := " "
		if conflicts.Has(crn) {
			mark = "!"
		}
		fmt.Printf("%s %s %-10s %-6s %s\n", mark, c.CRN, c.Code, c.Type, formatSlots(c))
	}
	if clashing := conflicts.CRNs(); len(clashing) > 0 {
		fmt.Printf("conflicts: %s\n", strings.Join(clashing, " "))
	}
}

func printCourses(courses []*domain.Course) {
	if len(courses) == 0 {
		fmt.Println("(no matches)")
		return
	}
	for _, c := range courses {
		senior := ""
		if c.Senior {
			senior = " [senior]"
		}
		fmt.Printf("  %s %-10s %-40s %s%s\n", c.CRN, c.Code, c.Title, formatSlots(c), senior)
	}
}

func sortedCRNs(snap schedule.Snapshot) []string {
	crns := make([]string, 0, len(snap))
	for crn := range snap {
		crns = append(crns, crn)
	}
	sort.Strings(crns)
	return crns
}

func formatSlots(c *domain.Course) string {
	if len(c.Slots) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(c.Slots))
	for _, s := range c.Slots {
		if s.Start == nil || s.End == nil {
			parts = append(parts, fmt.Sprintf("%s ?", s.Day))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s-%s", s.Day, clock(*s.Start), clock(*s.End)))
	}
	return strings.Join(parts, ", ")
}

func clock(v float64) string {
	h := int(v)
	m := int((v - float64(h)) * 60.0)
	return fmt.Sprintf("%02d:%02d", h, m)
}
