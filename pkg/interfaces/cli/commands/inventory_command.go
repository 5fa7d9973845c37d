package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/pantry/pkg/application/services"
	"github.com/vsinha/pantry/pkg/domain/entities"
	"github.com/vsinha/pantry/pkg/infrastructure/events"
	"github.com/vsinha/pantry/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/pantry/pkg/infrastructure/repositories/file"
	"github.com/vsinha/pantry/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/pantry/pkg/interfaces/cli/output"
)

// ErrUsage marks a malformed command line
var ErrUsage = errors.New("usage error")

// Config holds configuration for the inventory command
type Config struct {
	DataFile string
	LogFile  string
	Format   string
	Logger   *slog.Logger
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
}

type handler func(ctx context.Context, args []string) error

// InventoryCommand runs inventory operations against the state and log files
type InventoryCommand struct {
	config   Config
	service  *services.InventoryService
	printer  *output.Printer
	handlers map[string]handler
}

// NewInventoryCommand creates a new inventory command with the given configuration
func NewInventoryCommand(config Config) *InventoryCommand {
	if config.Stdin == nil {
		config.Stdin = os.Stdin
	}
	if config.Stdout == nil {
		config.Stdout = os.Stdout
	}
	if config.Stderr == nil {
		config.Stderr = os.Stderr
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	c := &InventoryCommand{config: config}
	c.handlers = map[string]handler{
		"add":      c.add,
		"use":      c.use,
		"date":     c.date,
		"set-date": c.setDate,
		"list":     c.list,
		"info":     c.info,
		"sweep":    c.sweep,
		"import":   c.importCSV,
		"export":   c.exportCSV,
	}
	return c
}

// Execute runs one subcommand, or an interactive shell that runs many
// against the same loaded inventory. Storage warnings are returned after
// the operation's output has been printed; see ExitCode.
func (c *InventoryCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.showHelp()
		return fmt.Errorf("%w: no command given", ErrUsage)
	}

	name := args[0]
	switch name {
	case "help", "-h", "-help", "--help":
		c.showHelp()
		return nil
	case "shell":
	default:
		if _, ok := c.handlers[name]; !ok {
			return fmt.Errorf("%w: unknown command %q", ErrUsage, name)
		}
	}

	printer, err := output.NewPrinter(c.config.Stdout, c.config.Format)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	c.printer = printer

	if err := c.open(ctx); err != nil {
		return err
	}

	if name == "shell" {
		if len(args) > 1 {
			return fmt.Errorf("%w: shell takes no arguments", ErrUsage)
		}
		return c.shell(ctx)
	}
	return c.handlers[name](ctx, args[1:])
}

// open loads the inventory. Load warnings are reported and do not stop the command.
func (c *InventoryCommand) open(ctx context.Context) error {
	journal, err := events.NewFileJournal(c.config.LogFile)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}

	service, err := services.NewInventoryService(
		ctx,
		memory.NewInventoryRepository(),
		file.NewStateStore(c.config.DataFile),
		journal,
		c.config.Logger,
	)
	if err != nil {
		Report(c.config.Stderr, err)
	}
	c.service = service
	return nil
}

func (c *InventoryCommand) shell(ctx context.Context) error {
	scanner := bufio.NewScanner(c.config.Stdin)
	c.prompt()
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		args, err := SplitArgs(scanner.Text())
		switch {
		case err != nil:
			Report(c.config.Stderr, fmt.Errorf("%w: %w", ErrUsage, err))
		case len(args) == 0:
		case args[0] == "exit" || args[0] == "quit":
			return nil
		case args[0] == "help":
			c.showHelp()
		case args[0] == "shell":
			Report(c.config.Stderr, fmt.Errorf("%w: already in a shell", ErrUsage))
		default:
			run, ok := c.handlers[args[0]]
			if !ok {
				Report(c.config.Stderr, fmt.Errorf("%w: unknown command %q", ErrUsage, args[0]))
				break
			}
			Report(c.config.Stderr, run(ctx, args[1:]))
		}
		c.prompt()
	}
	return scanner.Err()
}

func (c *InventoryCommand) prompt() {
	fmt.Fprint(c.config.Stderr, "pantry> ")
}

func (c *InventoryCommand) add(ctx context.Context, args []string) error {
	fs := c.newFlagSet("add")
	name := fs.String("name", "", "item name")
	qty := fs.String("qty", "", "quantity to add")
	expires := fs.String("expires", "", "expiration date (yyyy-MM-dd); makes the item perishable")
	if err := c.parse(fs, args, 0); err != nil {
		return err
	}

	quantity, err := parseQuantity(*qty)
	if err != nil {
		return err
	}

	var item *entities.Item
	if *expires == "" {
		item, err = entities.NewNonPerishableItem(*name, quantity)
	} else {
		var date entities.Date
		if date, err = entities.ParseDate(*expires); err == nil {
			item, err = entities.NewPerishableItem(*name, quantity, date)
		}
	}
	if err != nil {
		return err
	}

	return c.finish(c.service.Add(ctx, *item), func() error {
		return c.printer.Message("Added %s", item.Details())
	})
}

func (c *InventoryCommand) use(ctx context.Context, args []string) error {
	fs := c.newFlagSet("use")
	name := fs.String("name", "", "item name")
	qty := fs.String("qty", "", "quantity to use")
	perishable := fs.Bool("perishable", false, "draw from perishable batches, earliest expiration first")
	if err := c.parse(fs, args, 0); err != nil {
		return err
	}

	quantity, err := parseQuantity(*qty)
	if err != nil {
		return err
	}

	if *perishable {
		result, err := c.service.UsePerishable(ctx, *name, quantity)
		return c.finish(err, func() error {
			return c.printer.Allocation(result)
		})
	}

	return c.finish(c.service.UseNonPerishable(ctx, *name, quantity), func() error {
		return c.printer.Message("Used %s of %s", quantity, *name)
	})
}

func (c *InventoryCommand) date(_ context.Context, args []string) error {
	if err := c.parse(c.newFlagSet("date"), args, 0); err != nil {
		return err
	}
	return c.printer.Date(c.service.Date())
}

func (c *InventoryCommand) setDate(ctx context.Context, args []string) error {
	fs := c.newFlagSet("set-date")
	if err := c.parse(fs, args, 1); err != nil {
		return err
	}

	date, err := entities.ParseDate(fs.Arg(0))
	if err != nil {
		return err
	}

	return c.finish(c.service.SetDate(ctx, date), func() error {
		return c.printer.Message("Date set to %s", date)
	})
}

func (c *InventoryCommand) list(_ context.Context, args []string) error {
	fs := c.newFlagSet("list")
	by := fs.String("by", "expiration", "listing order: expiration or alphabetical")
	if err := c.parse(fs, args, 0); err != nil {
		return err
	}

	switch *by {
	case "expiration":
		if c.printer.IsText() {
			return c.printer.Lines(c.service.ListByExpiration())
		}
		return c.printer.Batches(c.service.Batches())
	case "alphabetical":
		return c.printer.Totals(c.service.ListByAlphabetical())
	default:
		return fmt.Errorf("%w: list: unknown order %q (want expiration or alphabetical)", ErrUsage, *by)
	}
}

func (c *InventoryCommand) info(_ context.Context, args []string) error {
	fs := c.newFlagSet("info")
	name := fs.String("name", "", "item name")
	expires := fs.String("expires", "", "only the perishable batch expiring on this date")
	nonPerishable := fs.Bool("non-perishable", false, "only the non-perishable batch")
	if err := c.parse(fs, args, 0); err != nil {
		return err
	}
	if *expires != "" && *nonPerishable {
		return fmt.Errorf("%w: info: -expires and -non-perishable are mutually exclusive", ErrUsage)
	}

	var (
		lines []string
		err   error
	)
	switch {
	case *nonPerishable:
		lines, err = c.service.BatchInfo(*name, nil)
	case *expires != "":
		date, parseErr := entities.ParseDate(*expires)
		if parseErr != nil {
			return parseErr
		}
		lines, err = c.service.BatchInfo(*name, &date)
	default:
		lines, err = c.service.ItemInfo(*name)
	}
	if err != nil {
		return err
	}
	return c.printer.Lines(lines)
}

func (c *InventoryCommand) sweep(ctx context.Context, args []string) error {
	if err := c.parse(c.newFlagSet("sweep"), args, 0); err != nil {
		return err
	}

	removed, err := c.service.RemoveExpiredItems(ctx)
	return c.finish(err, func() error {
		if len(removed) == 0 {
			return c.printer.Message("No expired items")
		}
		return c.printer.Batches(removed)
	})
}

func (c *InventoryCommand) importCSV(ctx context.Context, args []string) error {
	fs := c.newFlagSet("import")
	if err := c.parse(fs, args, 1); err != nil {
		return err
	}

	items, err := csv.NewLoader().LoadItems(fs.Arg(0))
	if err != nil {
		return err
	}

	return c.finish(c.service.AddAll(ctx, items), func() error {
		return c.printer.Message("Imported %d batches from %s", len(items), fs.Arg(0))
	})
}

func (c *InventoryCommand) exportCSV(_ context.Context, args []string) error {
	fs := c.newFlagSet("export")
	if err := c.parse(fs, args, 1); err != nil {
		return err
	}

	items := c.service.Batches()
	if err := csv.NewLoader().WriteItems(fs.Arg(0), items); err != nil {
		return err
	}
	return c.printer.Message("Exported %d batches to %s", len(items), fs.Arg(0))
}

// finish prints the result of an operation that succeeded, possibly with a
// storage warning, and passes the warning on.
func (c *InventoryCommand) finish(err error, print func() error) error {
	if err != nil && !entities.IsWarning(err) {
		return err
	}
	return errors.Join(print(), err)
}

func (c *InventoryCommand) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.config.Stderr)
	return fs
}

// parse parses flags and requires exactly positional arguments after them
func (c *InventoryCommand) parse(fs *flag.FlagSet, args []string, positional int) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %s: %w", ErrUsage, fs.Name(), err)
	}
	if fs.NArg() != positional {
		return fmt.Errorf("%w: %s expects %d argument(s), got %d", ErrUsage, fs.Name(), positional, fs.NArg())
	}
	return nil
}

func parseQuantity(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, fmt.Errorf("%w: -qty is required", ErrUsage)
	}
	quantity, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid quantity: %s", entities.ErrValidation, s)
	}
	return quantity, nil
}

// ExitCode maps an Execute error to a process exit status: 0 for success or
// a storage warning, 2 for a malformed command line, 1 for anything else.
func ExitCode(err error) int {
	switch {
	case err == nil, entities.IsWarning(err), errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, ErrUsage):
		return 2
	default:
		return 1
	}
}

// Report prints err to w and returns its exit status
func Report(w io.Writer, err error) int {
	code := ExitCode(err)
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case code == 0:
		fmt.Fprintf(w, "Warning: %v\n", err)
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	return code
}

// SplitArgs splits a shell line into words. Single or double quotes group
// words containing spaces; there are no escapes.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quote   rune
		inWord  bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if inWord {
		args = append(args, current.String())
	}
	return args, nil
}

// showHelp displays the help message
func (c *InventoryCommand) showHelp() {
	fmt.Fprint(c.config.Stdout, `pantry - track pantry items and their expiration dates

USAGE:
    pantry [global options] <command> [command options]

GLOBAL OPTIONS:
    -data <file>        State file (default: $PANTRY_DATA_FILE or data.txt)
    -log <file>         Journal file (default: $PANTRY_LOG_FILE or log.txt)
    -format <fmt>       Output format: text, json, csv (default: text)
    -log-level <lvl>    debug, info, warn or error (default: info)

COMMANDS:
    add -name <n> -qty <q> [-expires <yyyy-MM-dd>]
                        Add a batch; an expiration date makes it perishable
    use -name <n> -qty <q> [-perishable]
                        Use stock; -perishable draws earliest expiration first
    date                Print the current date
    set-date <yyyy-MM-dd>
                        Move the date forward and remove expired batches
    list [-by expiration|alphabetical]
                        List batches, or totals per name
    info -name <n> [-expires <yyyy-MM-dd> | -non-perishable]
                        Show the batches of one item
    sweep               Remove batches expiring on or before the current date
    import <file.csv>   Add every batch in a CSV file
    export <file.csv>   Write every batch to a CSV file
    shell               Read commands from stdin until EOF or "quit"
    help                Show this help message

CSV FILE FORMAT:
    kind,name,quantity,expiration_date
    Perishable,Milk,10,2024-01-05
    Non-Perishable,Rice,20,

EXAMPLES:
    pantry add -name Milk -qty 10 -expires 2024-01-05
    pantry use -name Milk -qty 12 -perishable
    pantry set-date 2024-01-06
    pantry -format json list -by alphabetical
`)
}
