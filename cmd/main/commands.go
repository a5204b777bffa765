package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"jewelry/catalog/internal/container"
	"jewelry/catalog/internal/domain"
	"jewelry/catalog/internal/domain/event"
	"jewelry/catalog/internal/form"
	"jewelry/catalog/internal/service"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func run(ctx context.Context, app *container.Container, command string, args []string) error {
	switch command {
	case "tree":
		return runTree(ctx, app, args)
	case "show":
		return runShow(ctx, app, args)
	case "save":
		return runSave(ctx, app, args)
	case "rename":
		return runRename(ctx, app, args)
	case "occasion":
		return runOccasion(ctx, app, args)
	case "upload":
		return runUpload(ctx, app, args)
	case "prices":
		return runPrices(ctx, app, args)
	case "watch":
		return runWatch(ctx, app)
	default:
		return fmt.Errorf("unknown command %q, see --help", command)
	}
}

// refresh loads the tree; a stale snapshot is still usable
func refresh(ctx context.Context, app *container.Container) error {
	_, err := app.Categories.Refresh(ctx)
	var stale *service.StaleError
	if errors.As(err, &stale) {
		log.Warnf("⚠️ %v", stale)
		return nil
	}
	return err
}

func runTree(ctx context.Context, app *container.Container, args []string) error {
	fs := flag.NewFlagSet("tree", flag.ContinueOnError)
	search := fs.String("search", "", "show only categories whose name contains TERM")
	expandAll := fs.Bool("expand-all", false, "expand every category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := refresh(ctx, app); err != nil {
		return err
	}

	nav := app.Categories.Navigator()
	if *expandAll {
		nav.ExpandAll()
	}
	nav.SetSearch(*search)
	return nav.Render(os.Stdout)
}

func runShow(ctx context.Context, app *container.Container, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: show ID")
	}

	f, err := app.Categories.OpenForm(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(f.State())
}

func runRename(ctx context.Context, app *container.Container, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: rename ID NAME")
	}

	if err := refresh(ctx, app); err != nil {
		return err
	}
	if err := app.Categories.Rename(ctx, args[0], args[1]); err != nil {
		return err
	}

	app.Categories.Navigator().ExpandAll()
	return app.Categories.Navigator().Render(os.Stdout)
}

func runSave(ctx context.Context, app *container.Container, args []string) error {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	file := fs.String("file", "", "YAML or JSON file with the category fields")
	id := fs.String("id", "", "category to update; omit to create")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("--file is required")
	}

	v := viper.New()
	v.SetConfigFile(*file)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read %s: %w", *file, err)
	}

	f, err := app.Categories.OpenForm(ctx, *id)
	if err != nil {
		return err
	}
	if err := applyValues(f, v); err != nil {
		return err
	}
	return save(ctx, app, f)
}

func runOccasion(ctx context.Context, app *container.Container, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: occasion add|remove|bind ID ...")
	}
	action, id, rest := args[0], args[1], args[2:]

	f, err := app.Categories.OpenForm(ctx, id)
	if err != nil {
		return err
	}

	switch action {
	case "add":
		err = f.AddOccasion(rest[0])
	case "remove":
		var i int
		if i, err = strconv.Atoi(rest[0]); err == nil {
			err = f.RemoveOccasion(i)
		}
	case "bind":
		var i int
		if i, err = strconv.Atoi(rest[0]); err == nil {
			productID := ""
			if len(rest) > 1 {
				productID = rest[1]
			}
			err = f.BindOccasionProduct(i, productID)
		}
	default:
		return fmt.Errorf("unknown occasion action %q", action)
	}
	if err != nil {
		return err
	}
	return save(ctx, app, f)
}

func runUpload(ctx context.Context, app *container.Container, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	id := fs.String("id", "", "category to attach the upload to")
	field := fs.String("field", service.FieldImage, "image, icon or banner")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || fs.NArg() != 1 {
		return fmt.Errorf("usage: upload --id ID --field FIELD FILE")
	}

	path := fs.Arg(0)
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	f, err := app.Categories.OpenForm(ctx, *id)
	if err != nil {
		return err
	}
	url, err := app.Categories.Upload(ctx, f, *field, filepath.Base(path), file)
	if err != nil {
		return err
	}
	fmt.Println(url)
	return save(ctx, app, f)
}

func runPrices(ctx context.Context, app *container.Container, args []string) error {
	fs := flag.NewFlagSet("prices", flag.ContinueOnError)
	history := fs.Bool("history", false, "print stored quotes for METAL PURITY instead of following the feed")
	limit := fs.Int("limit", 20, "number of stored quotes to print")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *history {
		if fs.NArg() != 2 {
			return fmt.Errorf("usage: prices --history METAL PURITY [--limit N]")
		}
		quotes, err := app.Prices.History(ctx, fs.Arg(0), fs.Arg(1), *limit)
		if err != nil {
			return err
		}
		for _, q := range quotes {
			fmt.Printf("%-12s %10.2f %s/g  %s\n", q.Key(), q.PricePerGram, q.Currency, q.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	}

	if err := app.Prices.Seed(ctx); err != nil {
		log.Warnf("⚠️ %v", err)
	}
	printPrices(app.Prices.Board().All())

	return app.Prices.Run(ctx, printPrices)
}

func runWatch(ctx context.Context, app *container.Container) error {
	if err := refresh(ctx, app); err != nil {
		return err
	}
	nav := app.Categories.Navigator()
	nav.ExpandAll()
	if err := nav.Render(os.Stdout); err != nil {
		return err
	}

	return app.Watch(ctx,
		func(changed *event.CategoryChanged) {
			fmt.Printf("\n-- %s %s --\n", changed.Action, changed.Name)
			nav.ExpandAll()
			if err := nav.Render(os.Stdout); err != nil {
				log.Warnf("⚠️ %v", err)
			}
		},
		printPrices,
	)
}

func save(ctx context.Context, app *container.Container, f *form.Form) error {
	id, err := app.Categories.Save(ctx, f)
	var verr *form.ValidationError
	if errors.As(err, &verr) {
		for _, field := range verr.Fields.Fields() {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", field, verr.Fields[field])
		}
		return fmt.Errorf("category not saved")
	}
	if err != nil {
		return err
	}
	fmt.Printf("saved %s\n", id)
	return nil
}

func printPrices(prices []domain.MetalPrice) {
	for _, p := range prices {
		fmt.Printf("%-12s %10.2f %s/g  %s\n", p.Key(), p.PricePerGram, p.Currency, p.UpdatedAt.Format("15:04:05"))
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
