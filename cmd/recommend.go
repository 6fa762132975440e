package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/vendor-matcher/internal/logger"
	"github.com/spigell/vendor-matcher/internal/ranking"
	"github.com/spigell/vendor-matcher/internal/recommend"
	"github.com/spigell/vendor-matcher/internal/vendors"
)

const promptOtherCategory = "Other..."

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank vendors for a project and print the result as JSON",
	Run: func(cmd *cobra.Command, _ []string) {
		if err := runRecommend(cmd); err != nil {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringP("title", "t", "", "project title")
	recommendCmd.Flags().StringP("category", "c", "", "requested service category")
	recommendCmd.Flags().StringP("description", "D", "", "project description and key skills")
	recommendCmd.Flags().BoolP("no-input", "n", false, "do not prompt for missing values")
}

func runRecommend(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	recommender, err := newRecommender(ctx, config, logger)
	if err != nil {
		logger.Fatal("setting up the recommender", zap.Error(err))
	}

	req := ranking.Request{
		ProjectTitle:       flagString(cmd, "title"),
		ServiceCategory:    flagString(cmd, "category"),
		ProjectDescription: flagString(cmd, "description"),
	}

	if noInput, _ := cmd.Flags().GetBool("no-input"); !noInput {
		req, err = askMissing(ctx, req, recommender, logger)
		if err != nil {
			logger.Error("reading project details", zap.Error(err))
			return err
		}
	}

	resp, err := recommender.Recommend(ctx, req)
	if err != nil {
		var validationErr *recommend.ValidationError
		if errors.As(err, &validationErr) {
			logger.Error("invalid project request", zap.Strings("missing", validationErr.Fields))
			return err
		}
		logger.Error("recommending vendors", zap.Error(err))
		return err
	}

	if !resp.Success {
		logger.Info("no recommendations", zap.String("reason", resp.Message))
	}

	return writeJSON(cmd.OutOrStdout(), resp)
}

func flagString(cmd *cobra.Command, name string) string {
	value, _ := cmd.Flags().GetString(name)
	return strings.TrimSpace(value)
}

// askMissing prompts for every empty request field. The category is picked from
// the categories of active vendors when the roster can be read.
func askMissing(ctx context.Context, req ranking.Request, recommender *recommend.Recommender, logger *zap.Logger) (ranking.Request, error) {
	var err error

	if req.ProjectTitle == "" {
		if req.ProjectTitle, err = askText("Project title"); err != nil {
			return req, err
		}
	}

	if req.ServiceCategory == "" {
		var categories []string
		roster, err := recommender.Vendors(ctx, false)
		if err != nil {
			logger.Warn("cannot list service categories", zap.Error(err))
		} else {
			categories = activeCategories(roster)
		}
		if req.ServiceCategory, err = askCategory(categories); err != nil {
			return req, err
		}
	}

	if req.ProjectDescription == "" {
		if req.ProjectDescription, err = askText("Project description and key skills"); err != nil {
			return req, err
		}
	}

	return req, nil
}

func askText(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("value is required")
			}
			return nil
		},
	}
	value, err := prompt.Run()
	return strings.TrimSpace(value), err
}

func askCategory(categories []string) (string, error) {
	if len(categories) == 0 {
		return askText("Service category")
	}

	selectPrompt := promptui.Select{
		Label: "Service category",
		Items: append(categories, promptOtherCategory),
		Size:  10,
	}
	_, selected, err := selectPrompt.Run()
	if err != nil {
		return "", err
	}
	if selected == promptOtherCategory {
		return askText("Service category")
	}
	return selected, nil
}

// activeCategories returns the sorted distinct categories offered by active vendors.
func activeCategories(roster *vendors.Vendors) []string {
	seen := make(map[string]struct{})
	categories := make([]string, 0)
	if roster == nil {
		return categories
	}
	for _, v := range roster.Items {
		if !v.IsActive() {
			continue
		}
		for _, c := range v.Categories() {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			categories = append(categories, c)
		}
	}
	sort.Strings(categories)
	return categories
}

func writeJSON(w io.Writer, v any) error {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(pretty))
	return err
}
