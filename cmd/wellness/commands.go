package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wellnessbuddy/wellness-platform/internal/chat"
	"github.com/wellnessbuddy/wellness-platform/internal/client"
	"github.com/wellnessbuddy/wellness-platform/internal/crisis"
	"github.com/wellnessbuddy/wellness-platform/internal/mood"
)

func sampleCmd(a *app) *cobra.Command {
	var days int
	var seed int64
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print generated sample mood history as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := mood.NewRandomSampleGenerator()
			if cmd.Flags().Changed("seed") {
				gen = mood.NewSampleGenerator(seed)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(gen.Generate(days, a.now()))
		},
	}
	cmd.Flags().IntVar(&days, "days", mood.DefaultSampleDays, "number of days to generate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed for repeatable output")
	return cmd
}

func insightsCmd(a *app) *cobra.Command {
	var rangeFlag string
	var useSample bool
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Summarize your mood history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(func(c *client.Client) error {
				out := cmd.OutOrStdout()
				history, err := c.FetchMoodHistory(cmd.Context())
				if err != nil {
					return err
				}
				offlineNote(out, history.Offline)

				entries := history.Entries
				if len(entries) == 0 && useSample {
					fmt.Fprintln(out, "(no history yet: showing sample data)")
					entries = mood.NewRandomSampleGenerator().Generate(mood.DefaultSampleDays, a.now())
				}
				printReport(out, mood.Aggregate(entries, mood.ParseRange(rangeFlag), a.now()))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&rangeFlag, "range", string(mood.RangeWeek), "week, month, or all")
	cmd.Flags().BoolVar(&useSample, "sample", false, "use sample data when there is no history")
	return cmd
}

func printReport(w io.Writer, r mood.Report) {
	fmt.Fprintf(w, "Range: %s\n", r.Range)
	fmt.Fprintf(w, "Entries: %d  Average: %.1f  High: %d  Low: %d\n", r.Stats.Count, r.Stats.Average, r.Stats.Max, r.Stats.Min)
	if r.Stats.Count == 0 {
		return
	}
	fmt.Fprintln(w)
	for i, label := range r.Series.Labels {
		fmt.Fprintf(w, "%-10s %s %d %s\n", label, strings.Repeat("#", r.Series.Scores[i]), r.Series.Scores[i], r.Series.Categories[i])
	}
	fmt.Fprintln(w)
	for _, c := range r.Categories {
		fmt.Fprintf(w, "%-10s %d\n", c.Category, c.Count)
	}
}

func logCmd(a *app) *cobra.Command {
	var score int
	var category, date string
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record how you feel today",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(func(c *client.Client) error {
				ack, err := c.PersistMood(cmd.Context(), mood.CreateRequest{Score: score, Category: category, Date: date})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s: %d %s)\n", ack.Message, ack.Entry.Date, ack.Entry.Score, ack.Entry.Category)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&score, "score", "s", 0, "mood score from 1 to 5")
	cmd.Flags().StringVarP(&category, "category", "c", "", "mood category ("+strings.Join(mood.Categories, ", ")+")")
	cmd.Flags().StringVar(&date, "date", "", "entry date (YYYY-MM-DD), default today")
	_ = cmd.MarkFlagRequired("score")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func scanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [text]",
		Short: "Check text for crisis keywords",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig := crisis.Scan(strings.Join(args, " "))
			out := cmd.OutOrStdout()
			if !sig.Triggered {
				fmt.Fprintln(out, "no crisis keywords found")
				return nil
			}
			fmt.Fprintf(out, "crisis keyword: %s\n%s\n", sig.MatchedKeyword, crisis.LifelineText)
			return nil
		},
	}
}

func chatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk with Wellness Buddy (Ctrl-D to quit)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return a.withClient(func(c *client.Client) error {
				out := cmd.OutOrStdout()
				scanner := bufio.NewScanner(a.stdin)
				fmt.Fprint(out, "you> ")
				for scanner.Scan() {
					text := strings.TrimSpace(scanner.Text())
					if text == "" {
						fmt.Fprint(out, "you> ")
						continue
					}
					reply := c.SendChatMessage(ctx, text)
					fmt.Fprint(out, "buddy> ")
					if err := reveal(ctx, out, reply.Response, a.revealWait); err != nil {
						return nil
					}
					if reply.Notice != "" {
						fmt.Fprintln(out, reply.Notice)
					}
					offlineNote(out, reply.Offline)
					fmt.Fprint(out, "you> ")
				}
				fmt.Fprintln(out)
				return scanner.Err()
			})
		},
	}
}

// reveal prints text a character at a time. It stops early when ctx ends.
func reveal(ctx context.Context, w io.Writer, text string, delay time.Duration) error {
	r := chat.NewReveal(text, delay)
	defer r.Cancel()

	printed := 0
	for state := range r.Start(ctx) {
		visible := state.Visible()
		fmt.Fprint(w, visible[printed:])
		printed = len(visible)
	}
	fmt.Fprintln(w)
	if err := r.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return ctx.Err()
}

func planCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Generate a 3-day wellness plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(func(c *client.Client) error {
				out := cmd.OutOrStdout()
				result := c.GenerateWellnessPlan(cmd.Context())
				offlineNote(out, result.Offline)
				if len(result.Plan.Days) == 0 {
					fmt.Fprintln(out, result.Plan.Text)
					return nil
				}
				for _, day := range result.Plan.Days {
					fmt.Fprintf(out, "Day %d\n", day.Day)
					for _, activity := range day.Activities {
						fmt.Fprintf(out, "  - %s\n", activity)
					}
				}
				return nil
			})
		},
	}
}

func quoteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "quote",
		Short: "Show today's motivation quote",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(func(c *client.Client) error {
				result := c.FetchMotivationQuote(cmd.Context())
				fmt.Fprintln(cmd.OutOrStdout(), result.Quote)
				return nil
			})
		},
	}
}

func emergencyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "emergency-email [address]",
		Short: "Set who is emailed when a crisis is detected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(func(c *client.Client) error {
				ack, err := c.PersistEmergencyContact(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", ack.Message, ack.EmergencyEmail)
				return nil
			})
		},
	}
}

func loginCmd(a *app) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a token for --token / WELLNESS_TOKEN",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprint(out, "Password: ")
			password, err := readPassword(a.stdin)
			fmt.Fprintln(out)
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			return a.withClient(func(c *client.Client) error {
				token, err := c.Login(cmd.Context(), username, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "export WELLNESS_TOKEN=%s\n", token)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

// readPassword hides input on a terminal and reads a plain line otherwise.
func readPassword(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		return string(b), err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
