package main

import (
	"fmt"
	"os"

	"github.com/ardanlabs/kuzco/cmd/kuzco/embed"
	"github.com/ardanlabs/kuzco/cmd/kuzco/libs"
	"github.com/ardanlabs/kuzco/cmd/kuzco/list"
	"github.com/ardanlabs/kuzco/cmd/kuzco/pull"
	"github.com/ardanlabs/kuzco/cmd/kuzco/rerank"
	"github.com/ardanlabs/kuzco/cmd/kuzco/rm"
	"github.com/ardanlabs/kuzco/cmd/kuzco/show"
	"github.com/ardanlabs/kuzco/cmd/server/api/services/kuzco"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kuzco",
	Short: "Hardware accelerated local reranking and embedding",
	Long:  "Hardware accelerated local reranking and embedding with llama.cpp directly integrated into your applications via yzma. Kuzco scores query/document pairs with cross-encoder and causal rerankers and produces normalized embedding vectors.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var (
	flagRerankModel string
	flagEmbedModel  string
	flagCatalog     string
	flagQuantized   bool
)

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().BoolP("version", "v", false, "Show version information")
	rootCmd.SetVersionTemplate(version)

	for _, cmd := range []*cobra.Command{pullCmd, listCmd, showCmd, rerankCmd, embedCmd} {
		cmd.Flags().StringVar(&flagCatalog, "catalog", "", "Path to a YAML catalog file overlaying the built-in catalog")
		cmd.Flags().BoolVar(&flagQuantized, "quantized", false, "Use the quantized weight artifact when the catalog has one")
	}

	rerankCmd.Flags().StringVar(&flagRerankModel, "model", "bge-reranker-v2-m3", "Catalog id of the reranker model")
	embedCmd.Flags().StringVar(&flagEmbedModel, "model", "bge-small-en-v1.5", "Catalog id of the embedder model")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(libsCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(rerankCmd)
	rootCmd.AddCommand(embedCmd)
	rootCmd.AddCommand(rmCmd)
}

var serverCmd = &cobra.Command{
	Use:     "server",
	Aliases: []string{"start"},
	Short:   "Start kuzco server",
	Long: `Start kuzco server

Environment Variables:
      KUZCO_WEB_API_HOST         (default: localhost:8080)        IP Address for the kuzco server
      KUZCO_WEB_DEBUG_HOST       (default: localhost:8090)        IP Address for the debug endpoints
      KUZCO_MODEL_DEVICE         (default: autodetection)         Device to use for inference
      KUZCO_MODEL_INSTANCES      (default: 1)                     Maximum number of parallel requests per model
      KUZCO_MODEL_MAX_IN_CACHE   (default: 3)                     Maximum number of models held in memory
      KUZCO_MODEL_CACHE_TTL      (default: 5m)                    Idle time before a model is unloaded
      KUZCO_MODEL_QUANTIZED      (default: false)                 Prefer quantized weight artifacts
      KUZCO_MODEL_RERANKER       (default: bge-reranker-v2-m3)    Default reranker model
      KUZCO_MODEL_EMBEDDER       (default: bge-small-en-v1.5)     Default embedder model
      KUZCO_CATALOG_FILE         (default: built-in)              Path to a YAML catalog file
      KUZCO_PROCESSOR            (default: cpu)                   Options: cpu, cuda, metal, vulkan`,
	Run: runServer,
}

var libsCmd = &cobra.Command{
	Use:   "libs",
	Short: "Install or upgrade llama.cpp libraries",
	Long: `Install or upgrade llama.cpp libraries

Environment Variables:
      KUZCO_PROCESSOR  (default: cpu)  Options: cpu, cuda, metal, vulkan`,
	Run: runLibs,
}

var pullCmd = &cobra.Command{
	Use:   "pull <MODEL_ID>",
	Short: "Pull a catalog model's weights",
	Args:  cobra.ExactArgs(1),
	Run:   runPull,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog models and their download state",
	Run:   runList,
}

var showCmd = &cobra.Command{
	Use:   "show <MODEL_ID>",
	Short: "Show information for a catalog model",
	Args:  cobra.ExactArgs(1),
	Run:   runShow,
}

var rerankCmd = &cobra.Command{
	Use:   "rerank <QUERY> <DOCUMENT>...",
	Short: "Score documents against a query",
	Args:  cobra.MinimumNArgs(2),
	Run:   runRerank,
}

var embedCmd = &cobra.Command{
	Use:   "embed <TEXT>...",
	Short: "Produce normalized embedding vectors",
	Args:  cobra.MinimumNArgs(1),
	Run:   runEmbed,
}

var rmCmd = &cobra.Command{
	Use:   "rm <FILE_NAME>",
	Short: "Remove a downloaded weight file",
	Args:  cobra.ExactArgs(1),
	Run:   runRm,
}

func runServer(cmd *cobra.Command, args []string) {
	if err := kuzco.Run(false); err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(1)
	}
}

func runLibs(cmd *cobra.Command, args []string) {
	if err := libs.Run(args); err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(1)
	}
}

func runPull(cmd *cobra.Command, args []string) {
	if err := pull.Run(args, flagCatalog, flagQuantized); err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(1)
	}
}

func runList(cmd *cobra.Command, args []string) {
	if err := list.Run(args, flagCatalog); err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(1)
	}
}

func runShow(cmd *cobra.Command, args []string) {
	if err := show.Run(args, flagCatalog, flagQuantized); err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(1)
	}
}

func runRerank(cmd *cobra.Command, args []string) {
	if err := rerank.Run(args, flagRerankModel, flagCatalog, flagQuantized); err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(1)
	}
}

func runEmbed(cmd *cobra.Command, args []string) {
	if err := embed.Run(args, flagEmbedModel, flagCatalog, flagQuantized); err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(1)
	}
}

func runRm(cmd *cobra.Command, args []string) {
	if err := rm.Run(args); err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(1)
	}
}
