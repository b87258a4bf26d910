// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Inspect and edit ~/.wrench/config.toml.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/wrench-tui/internal/config"
)

// HandleConfig runs "config show|path|init|get|set".
func HandleConfig(rt *Runtime, args Args) error {
	switch strings.ToLower(args.Subcommand) {
	case "", "show":
		return configShow(rt, args)
	case "path":
		return configPath(rt, args)
	case "init":
		return configInit(rt, args)
	case "get":
		return configGet(rt, args)
	case "set":
		return configSet(rt, args)
	default:
		return NewValidationErrorWithExample("subcommand", args.Subcommand,
			"expected show, path, init, get or set", "wrench config get api.base_url")
	}
}

// configShow prints the effective settings: file values with environment
// overrides applied.
func configShow(rt *Runtime, args Args) error {
	if args.JSON {
		return NewJSONResponse("config show", rt.Config).Write(rt.Stdout)
	}

	fmt.Fprintln(rt.Stdout, rt.style(TitleStyle.Render, "wrench configuration"))
	fmt.Fprintln(rt.Stdout, rt.style(DimStyle.Render, rt.ConfigPath))
	section := ""
	for _, key := range config.Keys() {
		if s, _, _ := strings.Cut(key, "."); s != section {
			section = s
			fmt.Fprintln(rt.Stdout)
			fmt.Fprintln(rt.Stdout, rt.style(SectionStyle.Render, "["+section+"]"))
		}
		val, err := rt.Config.Get(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(rt.Stdout, "  %-28s %v\n", key, val)
	}
	return nil
}

func configPath(rt *Runtime, args Args) error {
	_, err := os.Stat(rt.ConfigPath)
	exists := err == nil
	if args.JSON {
		return NewJSONResponse("config path", ConfigPathData{Path: rt.ConfigPath, Exists: exists}).Write(rt.Stdout)
	}
	fmt.Fprintln(rt.Stdout, rt.ConfigPath)
	return nil
}

// configInit writes the defaults. An existing file is left alone.
func configInit(rt *Runtime, args Args) error {
	if _, err := os.Stat(rt.ConfigPath); err == nil {
		return NewCommandError("config", "init", fmt.Errorf("%s already exists", rt.ConfigPath))
	}
	if err := config.SaveTOML(config.Default(), rt.ConfigPath); err != nil {
		return NewCommandError("config", "init", err)
	}
	if !args.Quiet {
		fmt.Fprintf(rt.Stdout, "%s wrote %s\n", rt.style(SuccessStyle.Render, "[OK]"), rt.ConfigPath)
	}
	return nil
}

func configGet(rt *Runtime, args Args) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("key", "wrench config get api.base_url")
	}
	val, err := rt.Config.Get(args.ConfigKey)
	if err != nil {
		return NewValidationError("key", args.ConfigKey, err.Error())
	}
	if args.JSON {
		return NewJSONResponse("config get", map[string]interface{}{args.ConfigKey: val}).Write(rt.Stdout)
	}
	fmt.Fprintln(rt.Stdout, val)
	return nil
}

// configSet edits the file on disk. Environment overrides are not written
// back; the edited file is validated before it replaces the old one.
func configSet(rt *Runtime, args Args) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return ErrMissingArgument("key and value", "wrench config set api.base_url http://localhost:8000")
	}

	cfg := config.Default()
	if _, err := os.Stat(rt.ConfigPath); err == nil {
		if err := config.LoadTOML(cfg, rt.ConfigPath); err != nil {
			return NewCommandError("config", "set", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return NewCommandError("config", "set", err)
	}

	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return NewValidationError("key", args.ConfigKey, err.Error())
	}
	if args.ConfigKey == "api.base_url" {
		u, err := config.NormalizeBaseURL(args.ConfigVal)
		if err != nil {
			return NewValidationError("api.base_url", args.ConfigVal, err.Error())
		}
		cfg.API.BaseURL = u
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.SaveTOML(cfg, rt.ConfigPath); err != nil {
		return NewCommandError("config", "set", err)
	}

	if !args.Quiet && !args.JSON {
		v, _ := cfg.Get(args.ConfigKey)
		fmt.Fprintf(rt.Stdout, "%s %s = %v\n", rt.style(SuccessStyle.Render, "[OK]"), args.ConfigKey, v)
	}
	return nil
}
