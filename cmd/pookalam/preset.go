/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"pookalam/internal/presets"
	"pookalam/internal/scene"
)

var errPresetUsage = errors.New("usage: pookalam preset list|show NAME|save NAME [flags]|delete NAME|import FILE")

// runPreset dispatches the preset subcommands against the configured store.
func runPreset(ctx context.Context, w io.Writer, a *app, args []string) error {
	if len(args) == 0 {
		return errPresetUsage
	}
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "list", "ls":
		return listPresets(ctx, w, st)
	case "show":
		if len(rest) != 1 {
			return errPresetUsage
		}
		p, err := st.Get(ctx, rest[0])
		if err != nil {
			return err
		}
		data, err := presets.Encode(p)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "save":
		if len(rest) < 1 {
			return errPresetUsage
		}
		name := rest[0]
		cfg := scene.ConfigFrom(a.cfg)
		fs, pf := newFlagSet("preset save", a.cfg, false)
		if err := parse(fs, rest[1:]); err != nil {
			return err
		}
		if err := pf.apply(&cfg); err != nil {
			return err
		}
		p, err := st.Save(ctx, presets.Preset{Name: name, Params: cfg.Params, Mode: cfg.Mode, Curve: cfg.Curve})
		if err != nil {
			return err
		}
		a.log.Info("preset saved", slog.String("name", p.Name), slog.String("driver", st.Driver()))
		fmt.Fprintf(w, "Saved %q (%s)\n", p.Name, p.Mode)
		return nil
	case "delete", "rm":
		if len(rest) != 1 {
			return errPresetUsage
		}
		if err := st.Delete(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Fprintf(w, "Deleted %q\n", rest[0])
		return nil
	case "import":
		if len(rest) != 1 {
			return errPresetUsage
		}
		data, err := os.ReadFile(rest[0])
		if err != nil {
			return err
		}
		ps, err := presets.Decode(data)
		if err != nil {
			return fmt.Errorf("%s: %w", rest[0], err)
		}
		n, err := presets.Import(ctx, st, ps)
		fmt.Fprintf(w, "Imported %d of %d presets\n", n, len(ps))
		return err
	default:
		return errPresetUsage
	}
}

func listPresets(ctx context.Context, w io.Writer, st presets.Store) error {
	ps, err := st.List(ctx)
	if err != nil {
		return err
	}
	if len(ps) == 0 {
		fmt.Fprintln(w, "No presets saved.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMODE\tCURVE\tUPDATED")
	for _, p := range ps {
		curve := p.Curve
		if curve == "" {
			curve = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, p.Mode, curve, p.UpdatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}
