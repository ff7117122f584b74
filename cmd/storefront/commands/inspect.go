package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/composable-commerce/storefront/internal/cms"
	"github.com/composable-commerce/storefront/internal/commerce"
)

var inspectOutput string

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the resolved fields of metaobjects and CMS entries",
	Long: `Fetch content the way pages do and print every leaf field with its path,
kind and value. Useful when a page renders an empty section.

Examples:
  # Every footer metaobject as a table
  storefront inspect metaobject footer

  # The CMS home entry as YAML
  storefront inspect entry shopify_home --output yaml

  # A specific entry
  storefront inspect entry pages_shopify blt0123456789abcdef`,
}

var inspectMetaobjectCmd = &cobra.Command{
	Use:   "metaobject <type>",
	Short: "Show every metaobject of a type",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspectMetaobject,
}

var inspectEntryCmd = &cobra.Command{
	Use:   "entry <content-type> [uid]",
	Short: "Show a CMS entry",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runInspectEntry,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.AddCommand(inspectMetaobjectCmd)
	inspectCmd.AddCommand(inspectEntryCmd)

	inspectCmd.PersistentFlags().StringVarP(&inspectOutput, "output", "o", formatTable, "output format (table, yaml, json)")
}

type metaobjectLister interface {
	FetchAllMetaobjects(ctx context.Context, typ string) ([]commerce.Metaobject, error)
}

type entryFetcher interface {
	FetchEntry(ctx context.Context, contentType string) (cms.Entry, error)
	FetchEntryByUID(ctx context.Context, contentType, uid string) (cms.Entry, error)
}

func runInspectMetaobject(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(inspectOutput)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}

	client := newCommerceClient(cfg)
	defer client.Close()

	docs, err := metaobjectDocuments(cmd.Context(), client, args[0])
	if err != nil {
		return err
	}
	return writeDocuments(cmd.OutOrStdout(), format, docs)
}

func metaobjectDocuments(ctx context.Context, api metaobjectLister, typ string) ([]document, error) {
	objects, err := api.FetchAllMetaobjects(ctx, typ)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s metaobjects: %w", typ, err)
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("no metaobjects of type %q", typ)
	}

	docs := make([]document, 0, len(objects))
	for _, m := range objects {
		title := m.Handle
		if title == "" {
			title = typ
		}
		docs = append(docs, newDocument(title, m.ID, m.Fields))
	}
	return docs, nil
}

func runInspectEntry(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(inspectOutput)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	if !cfg.CMS.Enabled() {
		return fmt.Errorf("cms is not configured (set cms.api_key, cms.delivery_token and cms.environment)")
	}

	client := newCMSClient(cfg)
	defer client.Close()

	uid := ""
	if len(args) == 2 {
		uid = args[1]
	}
	doc, err := entryDocument(cmd.Context(), client, args[0], uid)
	if err != nil {
		return err
	}
	return writeDocuments(cmd.OutOrStdout(), format, []document{doc})
}

func entryDocument(ctx context.Context, api entryFetcher, contentType, uid string) (document, error) {
	var (
		entry cms.Entry
		err   error
	)
	if uid == "" {
		entry, err = api.FetchEntry(ctx, contentType)
	} else {
		entry, err = api.FetchEntryByUID(ctx, contentType, uid)
	}
	if err != nil {
		return document{}, fmt.Errorf("failed to fetch %s entry: %w", contentType, err)
	}

	title := entry.Title
	if title == "" {
		title = contentType
	}
	return newDocument(title, entry.UID, entry.Fields), nil
}
