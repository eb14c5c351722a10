package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/heartwilltell/scotty"
)

type stampContextConfig struct {
	Current  stampContext   `json:"current"`
	Contexts []stampContext `json:"contexts"`
}

type stampContext struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
}

func contextCommand() *scotty.Command {
	cmd := scotty.Command{
		Name:  "ctx",
		Short: "Manages stamp client contexts",
	}

	cmd.AddSubcommands(
		contextInitCommand(),
		contextListCommand(),
		contextUseCommand(),
	)

	return &cmd
}

func contextInitCommand() *scotty.Command {
	var endpoint string

	cmd := scotty.Command{
		Name:  "init",
		Short: "Create context configuration file",
		SetFlags: func(flags *scotty.FlagSet) {
			flags.StringVar(&endpoint, "endpoint", defaultEndpoint,
				"endpoint of the default context",
			)
		},
		Run: func(cmd *scotty.Command, args []string) error {
			path, pathErr := contextFilePath()
			if pathErr != nil {
				return pathErr
			}

			if _, err := os.Stat(path); err == nil {
				fmt.Println("Context file already exists:", path)
				return nil
			}

			def := stampContext{Name: "default", Endpoint: endpoint}

			ctxConfig := stampContextConfig{
				Current:  def,
				Contexts: []stampContext{def},
			}

			if err := writeContextFile(path, &ctxConfig); err != nil {
				return err
			}

			fmt.Println("Context file created:", path)

			return nil
		},
	}

	return &cmd
}

func contextListCommand() *scotty.Command {
	cmd := scotty.Command{
		Name:  "list",
		Short: "show list of available contexts",
		Run: func(cmd *scotty.Command, args []string) error {
			ctxConfig, readErr := readContextFile()
			if readErr != nil {
				return readErr
			}

			fmt.Printf("Current context: %q endpoint: %q\n",
				ctxConfig.Current.Name,
				ctxConfig.Current.Endpoint,
			)

			fmt.Println("Contexts list:")

			for _, ctx := range ctxConfig.Contexts {
				fmt.Printf("Name: %q endpoint: %q\n",
					ctx.Name, ctx.Endpoint,
				)
			}

			return nil
		},
	}

	return &cmd
}

func contextUseCommand() *scotty.Command {
	var endpoint string

	cmd := scotty.Command{
		Name:  "use",
		Short: "switch the current context, adding it when an endpoint is given",
		SetFlags: func(flags *scotty.FlagSet) {
			flags.StringVar(&endpoint, "endpoint", "",
				"endpoint of a new context",
			)
		},
		Run: func(cmd *scotty.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("context name should be specified: stamp ctx use [name]")
			}

			path, pathErr := contextFilePath()
			if pathErr != nil {
				return pathErr
			}

			ctxConfig, readErr := readContextFile()
			if readErr != nil {
				return readErr
			}

			if err := ctxConfig.use(args[0], endpoint); err != nil {
				return err
			}

			if err := writeContextFile(path, ctxConfig); err != nil {
				return err
			}

			fmt.Printf("Switched to context %q\n", args[0])

			return nil
		},
	}

	return &cmd
}

// use makes the named context current. A non-empty endpoint adds the
// context or replaces its endpoint.
func (c *stampContextConfig) use(name, endpoint string) error {
	for i := range c.Contexts {
		if c.Contexts[i].Name != name {
			continue
		}

		if endpoint != "" {
			c.Contexts[i].Endpoint = endpoint
		}

		c.Current = c.Contexts[i]

		return nil
	}

	if endpoint == "" {
		return fmt.Errorf("context %q doesn't exist: pass --endpoint to add it", name)
	}

	c.Current = stampContext{Name: name, Endpoint: endpoint}
	c.Contexts = append(c.Contexts, c.Current)

	return nil
}

// currentEndpoint returns the endpoint of the current context or the default
// endpoint when there is no context file.
func currentEndpoint() string {
	ctxConfig, err := readContextFile()
	if err != nil || ctxConfig.Current.Endpoint == "" {
		return defaultEndpoint
	}

	return ctxConfig.Current.Endpoint
}

func contextFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}

	return filepath.Join(dir, "stamp", "context.json"), nil
}

func readContextFile() (*stampContextConfig, error) {
	path, pathErr := contextFilePath()
	if pathErr != nil {
		return nil, pathErr
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("context file doesn't exist: execute %q", "stamp ctx init")
		}

		return nil, fmt.Errorf("open context file: %w", err)
	}

	defer func() { _ = f.Close() }()

	var ctxConfig stampContextConfig

	if err := json.NewDecoder(f).Decode(&ctxConfig); err != nil {
		return nil, fmt.Errorf("decode context file: %w", err)
	}

	return &ctxConfig, nil
}

func writeContextFile(path string, ctxConfig *stampContextConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create context directory: %w", err)
	}

	b, err := json.MarshalIndent(ctxConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("encode context file content: %w", err)
	}

	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write context file: %w", err)
	}

	return nil
}
