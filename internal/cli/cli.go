// Package cli implements the gudangctl commands. Every command opens the
// store, runs one operation and renders the result.
package cli

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"gudang/internal/models"
	"gudang/internal/render"
	"gudang/internal/services"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
)

// Opener opens the inventory store and returns a function releasing it.
type Opener func() (*services.InventoryService, func() error, error)

// App runs gudangctl commands.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Open   Opener
	// Tokens issues API tokens for the token command; nil disables it.
	Tokens *services.TokenService
	// Watch streams change events for the watch command; nil disables it.
	Watch func(out io.Writer) error
}

type command struct {
	usage string
	run   func(a *App, args []string) error
}

var commands = map[string]command{
	"list":    {"list", (*App).list},
	"show":    {"show ID", (*App).show},
	"add":     {"add -name N -category C -qty Q -price P [-min M] [-id ID]", (*App).add},
	"modify":  {"modify ID [-name N] [-category C] [-qty Q] [-price P] [-min M]", (*App).modify},
	"delete":  {"delete ID [-yes]", (*App).delete},
	"search":  {"search KEYWORD", (*App).search},
	"low":     {"low", (*App).low},
	"stats":   {"stats", (*App).stats},
	"changes": {"changes [-n 10]", (*App).changes},
	"reset":   {"reset [-yes]", (*App).reset},
	"next-id": {"next-id", (*App).nextID},
	"token":   {"token", (*App).token},
	"watch":   {"watch", (*App).watch},
}

var commandOrder = []string{
	"list", "show", "add", "modify", "delete", "search", "low", "stats",
	"changes", "reset", "next-id", "token", "watch",
}

// errUsage marks a command line that could not be parsed.
var errUsage = errors.New("usage error")

// Usage prints the command summary.
func (a *App) Usage() {
	fmt.Fprintf(a.Stderr, "Usage: gudangctl <command> [options]\n\n")
	fmt.Fprintf(a.Stderr, "Inventory tracker command line.\n\n")
	fmt.Fprintf(a.Stderr, "Commands:\n")
	for _, name := range commandOrder {
		fmt.Fprintf(a.Stderr, "  %s\n", commands[name].usage)
	}
	fmt.Fprintf(a.Stderr, "\nConfiguration comes from the environment (DATA_FILE, LOG_FILE, INVENTORY_CAPACITY, ...).\n")
}

// Run executes the command named by args[0] and returns the exit code.
func (a *App) Run(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.Usage()
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(a.Stderr, "Error: unknown command %q\n\n", args[0])
		a.Usage()
		return 2
	}

	if err := cmd.run(a, args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(a.Stderr, "Usage: gudangctl %s\n", cmd.usage)
			return 2
		}
		color.New(color.FgRed, color.Bold).Fprint(a.Stderr, "Error: ")
		fmt.Fprintf(a.Stderr, "%v\n", err)
		return 1
	}
	return 0
}

func (a *App) withStore(fn func(*services.InventoryService) error) error {
	inv, closeFn, err := a.Open()
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(inv)
}

func (a *App) list(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	return a.withStore(func(inv *services.InventoryService) error {
		render.Products(a.Stdout, inv.List())
		return nil
	})
}

func (a *App) show(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return a.withStore(func(inv *services.InventoryService) error {
		p, err := inv.Get(args[0])
		if err != nil {
			return err
		}
		render.Products(a.Stdout, []models.Product{p})
		return nil
	})
}

func (a *App) add(args []string) error {
	fs := newFlagSet("add", a.Stderr)
	name := fs.String("name", "", "product name")
	category := fs.String("category", "", "product category")
	qty := fs.Int("qty", 0, "quantity in stock")
	price := fs.String("price", "0", "unit price")
	minStock := fs.Int("min", models.DefaultMinStock, "minimum stock before alert")
	id := fs.String("id", "", "product ID (generated when empty)")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return errUsage
	}

	parsedPrice, err := decimal.NewFromString(*price)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", *price, err)
	}

	return a.withStore(func(inv *services.InventoryService) error {
		p := inv.NewProduct()
		p.Name = *name
		p.Category = *category
		p.Quantity = *qty
		p.Price = parsedPrice
		p.MinStock = *minStock

		var added models.Product
		var err error
		if *id == "" {
			added, err = inv.AddNew(p)
		} else {
			p.ID = *id
			added, err = inv.Add(p)
		}
		if err != nil && added.ID == "" {
			return err
		}
		fmt.Fprintf(a.Stdout, "Product added successfully! (ID: %s)\n", added.ID)
		return err
	})
}

func (a *App) modify(args []string) error {
	id, rest := splitID(args)
	if id == "" {
		return errUsage
	}
	fs := newFlagSet("modify", a.Stderr)
	name := fs.String("name", "", "new name")
	category := fs.String("category", "", "new category")
	qty := fs.Int("qty", 0, "new quantity")
	price := fs.String("price", "", "new unit price")
	minStock := fs.Int("min", 0, "new minimum stock")
	if err := fs.Parse(rest); err != nil || fs.NArg() != 0 {
		return errUsage
	}

	var upd models.ProductUpdate
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			upd.Name = name
		case "category":
			upd.Category = category
		case "qty":
			upd.Quantity = qty
		case "min":
			upd.MinStock = minStock
		case "price":
			d, err := decimal.NewFromString(*price)
			if err != nil {
				parseErr = fmt.Errorf("invalid price %q: %w", *price, err)
				return
			}
			upd.Price = &d
		}
	})
	if parseErr != nil {
		return parseErr
	}

	return a.withStore(func(inv *services.InventoryService) error {
		updated, err := inv.Modify(id, upd)
		if err != nil && updated.ID == "" {
			return err
		}
		fmt.Fprintln(a.Stdout, "Product modified successfully!")
		render.Products(a.Stdout, []models.Product{updated})
		return err
	})
}

func (a *App) delete(args []string) error {
	id, rest := splitID(args)
	if id == "" {
		return errUsage
	}
	fs := newFlagSet("delete", a.Stderr)
	yes := fs.Bool("yes", false, "delete without asking")
	if err := fs.Parse(rest); err != nil || fs.NArg() != 0 {
		return errUsage
	}

	return a.withStore(func(inv *services.InventoryService) error {
		preview, err := inv.PreviewDelete(id)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.Stdout, "Deleting the following product:")
		render.Products(a.Stdout, []models.Product{preview})

		if !*yes && !a.confirm("Are you sure you want to delete this product? (y/n): ") {
			fmt.Fprintln(a.Stdout, "Deletion cancelled.")
			return nil
		}
		if _, err := inv.CommitDelete(id); err != nil {
			return err
		}
		fmt.Fprintln(a.Stdout, "Product deleted successfully!")
		return nil
	})
}

func (a *App) search(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return a.withStore(func(inv *services.InventoryService) error {
		render.Matches(a.Stdout, "SEARCH RESULTS", inv.Search(args[0]), "No matching products found.")
		return nil
	})
}

func (a *App) low(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	return a.withStore(func(inv *services.InventoryService) error {
		render.Matches(a.Stdout, "LOW STOCK PRODUCTS", inv.LowStock(), "No products are currently low in stock.")
		return nil
	})
}

func (a *App) stats(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	return a.withStore(func(inv *services.InventoryService) error {
		render.Statistics(a.Stdout, inv.Statistics())
		return nil
	})
}

func (a *App) changes(args []string) error {
	fs := newFlagSet("changes", a.Stderr)
	n := fs.Int("n", services.DefaultRecentChanges, "number of entries")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return errUsage
	}
	return a.withStore(func(inv *services.InventoryService) error {
		lines, err := inv.RecentChanges(*n)
		if err != nil {
			return err
		}
		render.Changes(a.Stdout, *n, lines)
		return nil
	})
}

func (a *App) reset(args []string) error {
	fs := newFlagSet("reset", a.Stderr)
	yes := fs.Bool("yes", false, "reset without asking")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return errUsage
	}
	if !*yes && !a.confirm("Are you sure you want to reset inventory and history? (y/n): ") {
		fmt.Fprintln(a.Stdout, "Reset cancelled.")
		return nil
	}
	return a.withStore(func(inv *services.InventoryService) error {
		if err := inv.Reset(); err != nil {
			return err
		}
		fmt.Fprintln(a.Stdout, "Inventory and history have been reset successfully.")
		return nil
	})
}

func (a *App) nextID(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	return a.withStore(func(inv *services.InventoryService) error {
		fmt.Fprintln(a.Stdout, inv.NextID())
		return nil
	})
}

func (a *App) token(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	if a.Tokens == nil {
		return fmt.Errorf("AUTH_SECRET is not set")
	}
	tok, err := a.Tokens.Issue()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Stdout, tok)
	return nil
}

func (a *App) watch(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	if a.Watch == nil {
		return fmt.Errorf("RABBITMQ_URL is not set")
	}
	return a.Watch(a.Stdout)
}

// confirm asks question on stdout and accepts an answer starting with y or Y.
func (a *App) confirm(question string) bool {
	fmt.Fprint(a.Stdout, question)
	if a.Stdin == nil {
		return false
	}
	answer, err := bufio.NewReader(a.Stdin).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.TrimSpace(answer)
	return strings.HasPrefix(answer, "y") || strings.HasPrefix(answer, "Y")
}

// splitID takes the leading positional ID so that flags may follow it.
func splitID(args []string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", args
	}
	return args[0], args[1:]
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}
