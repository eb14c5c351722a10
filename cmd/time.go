package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/heartwilltell/scotty"
	"github.com/plainq/stamp/internal/server/service/instant"
	"github.com/plainq/stamp/timestamp"
)

func nowCommand() *scotty.Command {
	var (
		layout  string
		jsonOut bool
	)

	cmd := scotty.Command{
		Name:  "now",
		Short: "Print the current instant",
		SetFlags: func(flags *scotty.FlagSet) {
			flags.StringVar(&layout, "layout", "",
				"render with the given layout, e.g. '{Y}-{m}-{d} {H}:{M}:{S}.{f}'",
			)

			flags.BoolVar(&jsonOut, "json", false,
				"enables json output",
			)
		},
		Run: func(_ *scotty.Command, _ []string) error {
			return printInstant(timestamp.Now(), layout, jsonOut)
		},
	}

	return &cmd
}

func formatCommand() *scotty.Command {
	var (
		layout  string
		jsonOut bool
	)

	cmd := scotty.Command{
		Name:  "format",
		Short: "Format milliseconds since 0000-01-01 as ISO 8601",
		SetFlags: func(flags *scotty.FlagSet) {
			flags.StringVar(&layout, "layout", "",
				"render with the given layout instead of ISO 8601",
			)

			flags.BoolVar(&jsonOut, "json", false,
				"enables json output",
			)
		},
		Run: func(_ *scotty.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("milliseconds should be specified: stamp format [millis]")
			}

			millis, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse milliseconds: %w", err)
			}

			return printInstant(timestamp.FromMillis(millis), layout, jsonOut)
		},
	}

	return &cmd
}

func parseCommand() *scotty.Command {
	var jsonOut bool

	cmd := scotty.Command{
		Name:  "parse",
		Short: "Parse ISO 8601 text and print milliseconds since 0000-01-01",
		SetFlags: func(flags *scotty.FlagSet) {
			flags.BoolVar(&jsonOut, "json", false,
				"enables json output",
			)
		},
		Run: func(_ *scotty.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("text should be specified: stamp parse [text]")
			}

			ts, err := timestamp.Parse(args[0])
			if err != nil {
				return err
			}

			if jsonOut {
				return printJSON(instant.NewView(ts))
			}

			fmt.Println(ts.Millis())

			return nil
		},
	}

	return &cmd
}

func fieldsCommand() *scotty.Command {
	var jsonOut bool

	cmd := scotty.Command{
		Name:  "fields",
		Short: "Build an instant from year month day [hour minute second millisecond]",
		SetFlags: func(flags *scotty.FlagSet) {
			flags.BoolVar(&jsonOut, "json", false,
				"enables json output",
			)
		},
		Run: func(_ *scotty.Command, args []string) error {
			ts, err := instantFromArgs(args)
			if err != nil {
				return err
			}

			return printInstant(ts, "", jsonOut)
		},
	}

	return &cmd
}

func layoutCommand() *scotty.Command {
	cmd := scotty.Command{
		Name:  "layout",
		Short: "Render ISO 8601 text with a layout: stamp layout [layout] [text]",
		Run: func(_ *scotty.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("layout and text should be specified: stamp layout [layout] [text]")
			}

			ts, err := timestamp.Parse(args[1])
			if err != nil {
				return err
			}

			return printInstant(ts, args[0], false)
		},
	}

	return &cmd
}

// instantFromArgs reads three to seven civil fields. Missing time fields are zero.
func instantFromArgs(args []string) (timestamp.Timestamp, error) {
	if len(args) < 3 || len(args) > 7 {
		return timestamp.Timestamp{}, errors.New("usage: stamp fields year month day [hour minute second millisecond]")
	}

	year, yearErr := strconv.ParseInt(args[0], 10, 64)
	if yearErr != nil {
		return timestamp.Timestamp{}, fmt.Errorf("parse year: %w", yearErr)
	}

	var rest [6]int

	for i, arg := range args[1:] {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return timestamp.Timestamp{}, fmt.Errorf("parse field %d: %w", i+2, err)
		}

		rest[i] = v
	}

	return timestamp.FromFields(year, rest[0], rest[1], rest[2], rest[3], rest[4], rest[5])
}

func printInstant(ts timestamp.Timestamp, layout string, jsonOut bool) error {
	if jsonOut {
		return printJSON(instant.NewView(ts))
	}

	if layout == "" {
		fmt.Println(ts)
		return nil
	}

	text, err := ts.Layout(layout)
	if err != nil {
		return err
	}

	fmt.Println(text)

	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	return nil
}
