package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/innercalm/backend/internal/infra/envswitch"
)

var profileDir string

var rootCmd = &cobra.Command{
	Use:   "switchenv",
	Short: "Switch between development, testing, and production environment profiles",
	Long: `switchenv activates one of the checked-in environment profiles by copying
.env.<environment> (or a .env.<environment>.local override) over the active
.env file. The server and test launchers run it before starting so the
process picks up exactly one profile.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var switchCmd = &cobra.Command{
	Use:   "switch <environment>",
	Short: "Activate the named environment profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sw := envswitch.New(profileDir)
		result, err := sw.Activate(args[0])
		if err != nil {
			return err
		}
		if result.UsedLocal {
			fmt.Printf("Using local environment file: %s\n", result.Source)
		}
		if result.BackedUp {
			fmt.Println("Backed up current .env to .env.backup")
		}
		fmt.Printf("Switched to %s environment (%s -> .env)\n", result.Environment, result.Source)

		profile, err := sw.Current()
		if err != nil {
			return err
		}
		fmt.Printf("  Database: %s\n", envswitch.DescribeDatabase(profile.Values["DATABASE_URL"]))
		if debug, ok := profile.Values["DEBUG"]; ok {
			fmt.Printf("  Debug mode: %s\n", debug)
		}
		return nil
	},
}

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the active environment configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := envswitch.New(profileDir).Current()
		if err != nil {
			return err
		}
		name := profile.Name
		if name == "" {
			name = "unknown"
		}
		fmt.Printf("Environment: %s\n", name)
		fmt.Println(strings.Repeat("-", 40))
		for _, key := range profile.SortedKeys() {
			fmt.Printf("%s: %s\n", key, profile.Display(key))
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available environment profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		envs, err := envswitch.New(profileDir).List()
		if err != nil {
			return err
		}
		if len(envs) == 0 {
			fmt.Println("No environment files found.")
			fmt.Println("Expected files: .env.development, .env.testing, .env.production")
			return nil
		}
		fmt.Println("Available environments:")
		for _, env := range envs {
			marker := " "
			if envswitch.IsValid(env) {
				marker = "*"
			}
			fmt.Printf("  %s %s\n", marker, env)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&profileDir, "dir", "d", "configs", "directory holding the .env profiles")
	rootCmd.AddCommand(switchCmd, currentCmd, listCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
