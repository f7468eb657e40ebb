package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/marcosaureliofarias/convite-aniversario/internal/dto"
	"github.com/marcosaureliofarias/convite-aniversario/internal/model"
	"github.com/marcosaureliofarias/convite-aniversario/internal/service"
)

// ── hash-password ──

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash for auth.admin_password_hash",
		Long:  "Print the bcrypt hash for auth.admin_password_hash. Reads the password from stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				password = strings.TrimRight(line, "\r\n")
			}

			hash, err := service.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

// ── list ──

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		query    string
		status   string
		byStatus bool
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List guests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := &dto.GuestListRequest{Query: query}
			switch status {
			case "":
			case "confirmed", "pending":
				confirmed := status == "confirmed"
				req.Confirmed = &confirmed
			default:
				return fmt.Errorf("--status must be confirmed or pending, got %q", status)
			}
			if byStatus {
				req.Sort = "status"
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				guests, err := a.svc.Guest.List(ctx, req)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd.OutOrStdout(), guests)
				}
				printGuests(cmd.OutOrStdout(), guests)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by name, phone or email")
	cmd.Flags().StringVar(&status, "status", "", "confirmed | pending")
	cmd.Flags().BoolVar(&byStatus, "by-status", false, "confirmed first, then by name")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print JSON instead of a table")
	return cmd
}

func printGuests(w io.Writer, guests []model.Guest) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tEMAIL\tSTATUS\tCONFIRMED AT")
	for _, g := range guests {
		status, confirmedAt := "pending", "-"
		if g.Confirmed {
			status = "confirmed"
			if g.ConfirmedAt != nil {
				confirmedAt = g.ConfirmedAt.Local().Format("2006-01-02 15:04")
			}
		}
		email := "-"
		if g.Email != nil {
			email = *g.Email
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", g.ID, g.Name, g.Phone, email, status, confirmedAt)
	}
	tw.Flush()
}

// ── stats ──

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show invitation stats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				stats, err := a.svc.Guest.Stats(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "total:      %d\n", stats.Total)
				fmt.Fprintf(out, "confirmed:  %d\n", stats.Confirmed)
				fmt.Fprintf(out, "pending:    %d\n", stats.Pending)
				fmt.Fprintf(out, "rate:       %.1f%%\n", stats.ConfirmationRate)
				return nil
			})
		},
	}
}

// ── export ──

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the guest list as a JSON backup or an Excel roster",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "json" && format != "xlsx" {
				return fmt.Errorf("--format must be json or xlsx, got %q", format)
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				var (
					data     []byte
					filename string
				)
				switch format {
				case "json":
					backup, name, err := a.svc.Export.ExportBackup(ctx)
					if err != nil {
						return err
					}
					data, err = json.MarshalIndent(backup, "", "  ")
					if err != nil {
						return err
					}
					filename = name
				case "xlsx":
					buf, name, err := a.svc.Export.ExportRoster(ctx)
					if err != nil {
						return err
					}
					data, filename = buf.Bytes(), name
				}

				if out == "" {
					out = filename
				}
				if out == "-" {
					_, err := cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "json | xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout (default: generated name)")
	return cmd
}

// ── import ──

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the guest list with a JSON backup or a JSON array of guests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			req, err := parseImport(data)
			if err != nil {
				return err
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				res, err := a.svc.Guest.Import(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d guests, skipped %d\n", res.Imported, res.Skipped)
				return nil
			})
		},
	}
}

// parseImport accepts a backup object ({"guests": [...]}) or a bare array
func parseImport(data []byte) (*dto.ImportRequest, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var guests []dto.ImportGuestRequest
		if err := json.Unmarshal(data, &guests); err != nil {
			return nil, fmt.Errorf("decode import file: %w", err)
		}
		return &dto.ImportRequest{Guests: guests}, nil
	}

	var req dto.ImportRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decode import file: %w", err)
	}
	if req.Guests == nil {
		return nil, errors.New("import file has no guests array")
	}
	return &req, nil
}

// ── qrcode ──

func newQRCodeCmd(opts *rootOptions) *cobra.Command {
	var (
		guestID string
		out     string
		size    int
	)

	cmd := &cobra.Command{
		Use:   "qrcode",
		Short: "Show the invite QR code in the terminal or write it as PNG",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if out != "" {
					png, _, err := a.svc.Export.InviteQRCode(ctx, guestID, size)
					if err != nil {
						return err
					}
					if err := os.WriteFile(out, png, 0o644); err != nil {
						return err
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
					return nil
				}

				link, err := a.svc.Export.InviteLink(ctx, guestID)
				if err != nil {
					return err
				}
				q, err := qrcode.New(link, qrcode.Medium)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), q.ToSmallString(false))
				fmt.Fprintln(cmd.OutOrStdout(), link)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&guestID, "guest", "", "guest id for a personal invite")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write a PNG file instead of printing")
	cmd.Flags().IntVar(&size, "size", 256, "PNG size in pixels")
	return cmd
}

// ── clear ──

func newClearCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every guest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to clear the guest list without --yes")
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.svc.Guest.Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "guest list cleared")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the bulk delete")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
