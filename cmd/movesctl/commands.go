package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mmynk/moves/pkg/api"
	"github.com/mmynk/moves/pkg/client"
)

func registerCmd(g *globals) *cobra.Command {
	var email, displayName, password string
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account and print its token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := g.client().Auth.Register(cmd.Context(), connect.NewRequest(&api.RegisterRequest{
				Username:    args[0],
				Email:       email,
				DisplayName: displayName,
				Password:    password,
			}))
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), resp.Msg, func(w io.Writer) {
				fmt.Fprintf(w, "Registered %s (%s)\n%s\n", resp.Msg.User.Username, resp.Msg.User.ID, resp.Msg.Token)
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&displayName, "display-name", "", "Display name (defaults to the username)")
	cmd.Flags().StringVar(&password, "password", "", "Password, at least 8 characters")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func loginCmd(g *globals) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and print a session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := g.client().Auth.Login(cmd.Context(), connect.NewRequest(&api.LoginRequest{
				Username: args[0],
				Password: password,
			}))
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), resp.Msg, func(w io.Writer) {
				fmt.Fprintln(w, resp.Msg.Token)
			})
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func groupCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Create, join and inspect groups",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create a group you own",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := requireToken(g); err != nil {
					return err
				}
				resp, err := g.client().Groups.CreateGroup(cmd.Context(), connect.NewRequest(&api.CreateGroupRequest{Name: args[0]}))
				if err != nil {
					return err
				}
				return g.print(cmd.OutOrStdout(), resp.Msg, func(w io.Writer) {
					printGroup(w, resp.Msg.Group)
				})
			},
		},
		&cobra.Command{
			Use:   "join <join-key>",
			Short: "Join a group with its join key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := requireToken(g); err != nil {
					return err
				}
				resp, err := g.client().Groups.JoinGroup(cmd.Context(), connect.NewRequest(&api.JoinGroupRequest{JoinKey: args[0]}))
				if err != nil {
					return err
				}
				return g.print(cmd.OutOrStdout(), resp.Msg, func(w io.Writer) {
					if !resp.Msg.Joined {
						fmt.Fprintln(w, "Already a member")
					}
					printGroup(w, resp.Msg.Group)
				})
			},
		},
		&cobra.Command{
			Use:   "members <group-id>",
			Short: "Print the number of members",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				resp, err := g.client().Groups.GetMemberCount(cmd.Context(), connect.NewRequest(&api.GetMemberCountRequest{GroupID: args[0]}))
				if err != nil {
					return err
				}
				return g.print(cmd.OutOrStdout(), resp.Msg, func(w io.Writer) {
					fmt.Fprintln(w, resp.Msg.Count)
				})
			},
		},
	)
	return cmd
}

func settingsCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change a group's voting settings",
	}

	get := &cobra.Command{
		Use:   "get <group-id>",
		Short: "Show the voting settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := g.client().Groups.GetSettings(cmd.Context(), connect.NewRequest(&api.GetSettingsRequest{GroupID: args[0]}))
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), resp.Msg, func(w io.Writer) {
				printSettings(w, resp.Msg.Settings)
			})
		},
	}

	var minVotes, deadlineHours int
	set := &cobra.Command{
		Use:   "set <group-id>",
		Short: "Change the voting settings (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := g.client().Groups.UpdateSettings(cmd.Context(), connect.NewRequest(&api.UpdateSettingsRequest{
				GroupID:           args[0],
				MinVotesRequired:  minVotes,
				VoteDeadlineHours: deadlineHours,
			}))
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), resp.Msg, func(w io.Writer) {
				printSettings(w, resp.Msg.Settings)
			})
		},
	}
	set.Flags().IntVar(&minVotes, "min-votes", 3, "Votes needed to approve a move")
	set.Flags().IntVar(&deadlineHours, "deadline-hours", 24, "Hours a new move stays open for votes (1-168)")

	cmd.AddCommand(get, set)
	return cmd
}

func moveCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Create, edit and delete moves",
	}

	var description, requestID string
	create := &cobra.Command{
		Use:   "create <group-id> <name>",
		Short: "Propose a move",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if requestID == "" {
				requestID = uuid.NewString()
			}
			resp, err := g.client().Moves.CreateMove(cmd.Context(), connect.NewRequest(&api.CreateMoveRequest{
				GroupID:     args[0],
				Name:        args[1],
				Description: description,
				RequestID:   requestID,
			}))
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), resp.Msg, func(w io.Writer) {
				fmt.Fprintf(w, "Created %s (%s), voting closes %s\n",
					resp.Msg.Move.Name, resp.Msg.Move.ID, formatTime(resp.Msg.Move.Deadline))
			})
		},
	}
	create.Flags().StringVar(&description, "description", "", "Details about the move")
	create.Flags().StringVar(&requestID, "request-id", "", "Idempotency key; retries with the same key return the same move")

	var newName, newDescription string
	edit := &cobra.Command{
		Use:   "edit <move-id>",
		Short: "Rename a move or change its description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := g.client().Moves.EditMove(cmd.Context(), connect.NewRequest(&api.EditMoveRequest{
				MoveID:      args[0],
				Name:        newName,
				Description: newDescription,
			}))
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), resp.Msg, func(w io.Writer) {
				fmt.Fprintf(w, "Updated %s (%s)\n", resp.Msg.Move.Name, resp.Msg.Move.ID)
			})
		},
	}
	edit.Flags().StringVar(&newName, "name", "", "New name")
	edit.Flags().StringVar(&newDescription, "description", "", "New description")
	_ = edit.MarkFlagRequired("name")

	del := &cobra.Command{
		Use:   "delete <move-id>",
		Short: "Delete a move and its votes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := g.client().Moves.DeleteMove(cmd.Context(), connect.NewRequest(&api.DeleteMoveRequest{MoveID: args[0]}))
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), resp.Msg, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted %s\n", args[0])
			})
		},
	}

	cmd.AddCommand(create, edit, del)
	return cmd
}

func listCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list <group-id>",
		Short: "List a group's moves with their votes and status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := g.client().Moves.ListMoves(cmd.Context(), connect.NewRequest(&api.ListMovesRequest{GroupID: args[0]}))
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), resp.Msg, func(w io.Writer) {
				printMoves(w, resp.Msg.Moves)
			})
		},
	}
}

func tallyCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "tally <group-id>",
		Short: "Print the vote count of every move",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := g.client().Votes.GetTally(cmd.Context(), connect.NewRequest(&api.GetTallyRequest{GroupID: args[0]}))
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), resp.Msg, func(w io.Writer) {
				ids := make([]string, 0, len(resp.Msg.Tallies))
				for id := range resp.Msg.Tallies {
					ids = append(ids, id)
				}
				sort.Strings(ids)
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "MOVE\tVOTES\tVOTERS")
				for _, id := range ids {
					t := resp.Msg.Tallies[id]
					fmt.Fprintf(tw, "%s\t%d\t%s\n", id, t.VoteCount, strings.Join(t.VoterIDs, ","))
				}
				tw.Flush()
			})
		},
	}
}

func voteCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "vote <move-id>",
		Short: "Vote for a move",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := g.client().Votes.CastVote(cmd.Context(), connect.NewRequest(&api.CastVoteRequest{MoveID: args[0]}))
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), resp.Msg, func(w io.Writer) {
				note := ""
				if !resp.Msg.Inserted {
					note = " (already voted)"
				}
				fmt.Fprintf(w, "%d votes, %s%s\n", resp.Msg.Tally.VoteCount, resp.Msg.Status, note)
			})
		},
	}
}

func sweepCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep <group-id>",
		Short: "Remove a group's expired moves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := g.client().Moves.SweepGroup(cmd.Context(), connect.NewRequest(&api.SweepGroupRequest{GroupID: args[0]}))
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), resp.Msg, func(w io.Writer) {
				fmt.Fprintf(w, "Removed %d expired moves\n", resp.Msg.Removed)
			})
		},
	}
}

func watchCmd(g *globals) *cobra.Command {
	var interval time.Duration
	var stream bool
	cmd := &cobra.Command{
		Use:   "watch <group-id>",
		Short: "Refresh a group's moves until interrupted",
		Long: `watch sweeps and lists a group's moves every --interval.
With --stream it prints events pushed by the server instead of polling.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := g.client()
			out := cmd.OutOrStdout()
			if stream {
				return watchStream(cmd, g, c, args[0])
			}
			p := &client.Poller{Client: c, Interval: interval}
			return p.Run(cmd.Context(), args[0], func(s *client.Snapshot) error {
				return g.print(out, s, func(w io.Writer) {
					fmt.Fprintf(w, "-- %s, removed %d\n", s.At.UTC().Format(time.RFC3339), s.Removed)
					printMoves(w, s.Moves)
				})
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", client.DefaultInterval, "Polling interval")
	cmd.Flags().BoolVar(&stream, "stream", false, "Print server-pushed events instead of polling")
	return cmd
}

func watchStream(cmd *cobra.Command, g *globals, c *client.Client, groupID string) error {
	s, err := c.Moves.WatchGroup(cmd.Context(), connect.NewRequest(&api.WatchGroupRequest{GroupID: groupID}))
	if err != nil {
		return err
	}
	defer s.Close()

	for s.Receive() {
		ev := s.Msg()
		if err := g.print(cmd.OutOrStdout(), ev, func(w io.Writer) {
			fmt.Fprintf(w, "%s %s move=%s user=%s count=%d\n",
				formatTime(ev.At), ev.Type, ev.MoveID, ev.UserID, ev.Count)
		}); err != nil {
			return err
		}
	}
	if cmd.Context().Err() != nil {
		return nil
	}
	return s.Err()
}

func printGroup(w io.Writer, grp api.Group) {
	fmt.Fprintf(w, "Group %s (%s)\n", grp.Name, grp.ID)
	if grp.JoinKey != "" {
		fmt.Fprintf(w, "Join key: %s\n", grp.JoinKey)
	}
}

func printSettings(w io.Writer, s api.Settings) {
	fmt.Fprintf(w, "min_votes_required=%d vote_deadline_hours=%d\n", s.MinVotesRequired, s.VoteDeadlineHours)
}

func printMoves(w io.Writer, moves []api.ListedMove) {
	if len(moves) == 0 {
		fmt.Fprintln(w, "No moves")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tVOTES\tSTATUS\tDEADLINE")
	for _, m := range moves {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", m.Move.ID, m.Move.Name, m.Tally.VoteCount, m.Status, formatTime(m.Move.Deadline))
	}
	tw.Flush()
}

func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}
