package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/heartwilltell/scotty"
	"github.com/plainq/servekit/idkit"
	"github.com/plainq/stamp/internal/client"
	"github.com/plainq/stamp/internal/server/storage"
)

const (
	// defaultLimit represents the default limit for listing records.
	defaultLimit = 100

	// defaultEndpoint is used when neither a flag nor a context names the server.
	defaultEndpoint = "localhost:8081"
)

// clientFlags are shared by every client command.
type clientFlags struct {
	addr    string
	jsonOut bool
}

func (c *clientFlags) set(flags *scotty.FlagSet) {
	flags.StringVar(&c.addr, "addr", "",
		"sets stamp HTTP address, defaults to the current context endpoint",
	)

	flags.BoolVar(&c.jsonOut, "json", false,
		"enables json output",
	)
}

func (c *clientFlags) client() (*client.Client, error) {
	addr := c.addr
	if addr == "" {
		addr = currentEndpoint()
	}

	cli, err := client.New(addr, client.WithUserAgent("stamp-cli/"+Commit))
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	return cli, nil
}

func recordsCommand() *scotty.Command {
	cmd := scotty.Command{
		Name:  "records",
		Short: "Manage records on a stamp server",
	}

	cmd.AddSubcommands(
		listRecordsCommand(),
		createRecordCommand(),
		getRecordCommand(),
		touchRecordCommand(),
		ageRecordCommand(),
		deleteRecordCommand(),
	)

	return &cmd
}

func listRecordsCommand() *scotty.Command {
	var (
		flags clientFlags

		limit  uint
		cursor string
		desc   bool
	)

	cmd := scotty.Command{
		Name:  "list",
		Short: "List records",
		SetFlags: func(f *scotty.FlagSet) {
			flags.set(f)

			f.UintVar(&limit, "limit", defaultLimit,
				"sets pages size for pagination",
			)

			f.StringVar(&cursor, "cursor", "",
				"continue after the given record ID",
			)

			f.BoolVar(&desc, "desc", false,
				"list newest records first",
			)
		},
		Run: func(_ *scotty.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cli, cliErr := flags.client()
			if cliErr != nil {
				return cliErr
			}

			if limit > maxPageLimit {
				return fmt.Errorf("limit value too large: %d", limit)
			}

			in := storage.ListRecordsInput{
				Cursor: cursor,
				Limit:  uint32(limit),
				Order:  storage.SortAsc,
			}

			if desc {
				in.Order = storage.SortDesc
			}

			list, listErr := cli.ListRecords(ctx, in)
			if listErr != nil {
				return fmt.Errorf("list records: %w", listErr)
			}

			if flags.jsonOut {
				return printJSON(list)
			}

			for _, r := range list.Records {
				printRecord(&r)
			}

			if list.HasMore {
				fmt.Printf("more records: --cursor %s\n", list.NextCursor)
			}

			return nil
		},
	}

	return &cmd
}

// maxPageLimit mirrors the page size cap of the server.
const maxPageLimit = 1000

func createRecordCommand() *scotty.Command {
	var flags clientFlags

	cmd := scotty.Command{
		Name:     "create",
		Short:    "Create a record",
		SetFlags: flags.set,
		Run: func(_ *scotty.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			if len(args) < 1 {
				return errors.New("record label should be specified: stamp records create [label]")
			}

			cli, cliErr := flags.client()
			if cliErr != nil {
				return cliErr
			}

			created, createErr := cli.CreateRecord(ctx, args[0])
			if createErr != nil {
				return fmt.Errorf("create record: %w", createErr)
			}

			if flags.jsonOut {
				return printJSON(created)
			}

			fmt.Println(created.ID)

			return nil
		},
	}

	return &cmd
}

func getRecordCommand() *scotty.Command {
	var flags clientFlags

	cmd := scotty.Command{
		Name:     "get",
		Short:    "Show a record",
		SetFlags: flags.set,
		Run: func(_ *scotty.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			id, idErr := recordIDArg(args, "get")
			if idErr != nil {
				return idErr
			}

			cli, cliErr := flags.client()
			if cliErr != nil {
				return cliErr
			}

			r, getErr := cli.GetRecord(ctx, id)
			if getErr != nil {
				return fmt.Errorf("get record: %w", getErr)
			}

			if flags.jsonOut {
				return printJSON(r)
			}

			printRecord(r)

			return nil
		},
	}

	return &cmd
}

func touchRecordCommand() *scotty.Command {
	var flags clientFlags

	cmd := scotty.Command{
		Name:     "touch",
		Short:    "Set the updated time of a record to now",
		SetFlags: flags.set,
		Run: func(_ *scotty.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			id, idErr := recordIDArg(args, "touch")
			if idErr != nil {
				return idErr
			}

			cli, cliErr := flags.client()
			if cliErr != nil {
				return cliErr
			}

			r, touchErr := cli.TouchRecord(ctx, id)
			if touchErr != nil {
				return fmt.Errorf("touch record: %w", touchErr)
			}

			if flags.jsonOut {
				return printJSON(r)
			}

			printRecord(r)

			return nil
		},
	}

	return &cmd
}

func ageRecordCommand() *scotty.Command {
	var (
		flags     clientFlags
		retention time.Duration
	)

	cmd := scotty.Command{
		Name:  "age",
		Short: "Show how long ago a record was created and touched",
		SetFlags: func(f *scotty.FlagSet) {
			flags.set(f)

			f.DurationVar(&retention, "retention", 0,
				"also tell whether the record was not touched for this long",
			)
		},
		Run: func(_ *scotty.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			id, idErr := recordIDArg(args, "age")
			if idErr != nil {
				return idErr
			}

			cli, cliErr := flags.client()
			if cliErr != nil {
				return cliErr
			}

			age, ageErr := cli.RecordAge(ctx, id, retention)
			if ageErr != nil {
				return fmt.Errorf("record age: %w", ageErr)
			}

			if flags.jsonOut {
				return printJSON(age)
			}

			fmt.Println("created:", age.SinceCreated, "ago")
			fmt.Println("updated:", age.SinceUpdated, "ago")

			if age.Expired != nil {
				fmt.Println("expired:", *age.Expired)
			}

			return nil
		},
	}

	return &cmd
}

func deleteRecordCommand() *scotty.Command {
	var flags clientFlags

	cmd := scotty.Command{
		Name:     "delete",
		Short:    "Delete a record",
		SetFlags: flags.set,
		Run: func(_ *scotty.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			id, idErr := recordIDArg(args, "delete")
			if idErr != nil {
				return idErr
			}

			cli, cliErr := flags.client()
			if cliErr != nil {
				return cliErr
			}

			if err := cli.DeleteRecord(ctx, id); err != nil {
				return fmt.Errorf("delete record: %w", err)
			}

			fmt.Println("Record deleted")

			return nil
		},
	}

	return &cmd
}

func recordIDArg(args []string, op string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("record id should be specified: stamp records %s [record id]", op)
	}

	if err := idkit.ValidateXID(args[0]); err != nil {
		return "", fmt.Errorf("invalid record id %q: %w", args[0], err)
	}

	return args[0], nil
}

func printRecord(r *storage.Record) {
	fmt.Println(r.ID, "|", r.Label, "|", r.Created, "|", r.Updated)
}
