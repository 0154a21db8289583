package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/pkg/logging"
	"github.com/rushteam/animerec/recall"
	"github.com/rushteam/animerec/server"
	"github.com/rushteam/animerec/service"
)

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Server.Addr
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		addr = v
	}
	srv := server.New(a.rec, logging.Component("http"))
	return srv.Run(ctx, addr, a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q", args[0])
	}

	ctx := commandContext(cmd)
	a, err := newApp(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	var opts []service.RequestOption
	if n, _ := cmd.Flags().GetInt("top-n"); n > 0 {
		opts = append(opts, service.WithTopN(n))
	}
	if w, _ := cmd.Flags().GetFloat64("user-weight"); w >= 0 {
		opts = append(opts, service.WithUserWeight(w))
	}
	if w, _ := cmd.Flags().GetFloat64("content-weight"); w >= 0 {
		opts = append(opts, service.WithContentWeight(w))
	}

	res, err := a.rec.RecommendScored(ctx, core.UserID(id), opts...)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if res.Empty() {
		fmt.Fprintf(out, "User ID %d not found or has no recommendations.\n", id)
		return nil
	}
	scores, _ := cmd.Flags().GetBool("scores")
	for i, it := range res.Items {
		if scores {
			fmt.Fprintf(out, "%2d. %-50s %.3f\n", i+1, it.Name, it.Score)
			continue
		}
		fmt.Fprintf(out, "%2d. %s\n", i+1, it.Name)
	}
	return nil
}

func runSimilar(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	n, _ := cmd.Flags().GetInt("n")
	neg, _ := cmd.Flags().GetBool("neg")
	out := cmd.OutOrStdout()

	if asUser, _ := cmd.Flags().GetBool("user"); asUser {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}
		users, err := a.rec.SimilarUsers(core.UserID(id), n, neg)
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Fprintf(out, "%2d. user %-10d %.4f\n", u.Rank, u.ID, u.Score)
		}
		return nil
	}

	var neighbors []recall.ItemNeighbor
	if id, perr := strconv.ParseInt(args[0], 10, 64); perr == nil {
		neighbors, err = a.rec.SimilarAnime(core.ItemID(id), n, neg)
	} else {
		neighbors, err = a.rec.SimilarAnimeByName(args[0], n, neg)
	}
	if err != nil {
		return err
	}
	for _, nb := range neighbors {
		fmt.Fprintf(out, "%2d. %-50s %.4f  %s\n", nb.Rank, nb.Anime.Name, nb.Score, nb.Anime.Genres)
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
