package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	Version = "1.0.0"
)

func showBanner() {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔══════════════════════════════════════════════╗",
		"║   ██████╗  ██████╗ ███████╗                  ║",
		"║   ██╔══██╗██╔═══██╗██╔════╝                  ║",
		"║   ██████╔╝██║   ██║███████╗  seed            ║",
		"║   ██╔═══╝ ██║   ██║╚════██║                  ║",
		"║   ██║     ╚██████╔╝███████║                  ║",
		"║   ╚═╝      ╚═════╝ ╚══════╝                  ║",
		"║                                              ║",
		"║   🍽️  Fake restaurants, menus and orders      ║",
		"╚══════════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Println(line)
	}

	fmt.Print("            ")
	color.New(color.FgCyan, color.Bold).Print("Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "posseed",
	Short: "Seed a restaurant POS database with consistent fake data",
	Long: `
posseed fills the MongoDB database of the restaurant point-of-sale backend with
internally consistent demo data:

- Roles and a SuperAdmin account (idempotent)
- Restaurants with outlets, suppliers, inventory, categories and menus
- Tables and staff accounts per restaurant
- Orders per outlet, with the stock movements and table state they imply

Configuration comes from flags, environment variables (.env supported) and an
optional posseed.config.json.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("posseed version %s\n", Version)
			return
		}

		showBanner()
		fmt.Println()
		cmd.Help()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./posseed.config.json)")
	rootCmd.PersistentFlags().String("mongo-uri", "", "MongoDB connection string (env MONGO_URI)")
	rootCmd.PersistentFlags().String("log-level", "", "diagnostic log level: debug, info, warn, error (env LOG_LEVEL)")
	viper.BindPFlag("mongo_uri", rootCmd.PersistentFlags().Lookup("mongo-uri"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")
}

// loadDotenv reads .env.local and then .env. Variables already set win over
// both files, and .env.local wins over .env.
func loadDotenv() {
	for _, file := range []string{".env.local", ".env"} {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			color.Yellow("⚠️  Could not read %s: %v", file, err)
		}
	}
}

func initConfig() {
	loadDotenv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("posseed.config")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			color.Yellow("⚠️  Could not read config file %s: %v", cfgFile, err)
		}
	}
}
