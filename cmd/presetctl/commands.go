package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tendant/layout-presets/pkg/layoutpreset"
)

// NewAllowedCommand creates the allowed command
func NewAllowedCommand(flags *globalFlags) *cobra.Command {
	var (
		device        string
		contextDevice string
		itemID        string
		site          string
	)

	cmd := &cobra.Command{
		Use:   "allowed <placeholder>",
		Short: "List the presets allowed in a placeholder",
		Long:  `List the preset fragments an author may insert into the given placeholder of a page.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := newService(cmd, flags)
			if err != nil {
				return err
			}

			req := layoutpreset.AllowedFragmentsRequest{
				PlaceholderKey:  args[0],
				DeviceID:        device,
				ContextDeviceID: contextDevice,
				SiteName:        site,
			}
			if req.SiteName == "" {
				req.SiteName = cfg.CurrentSite
			}
			if itemID != "" {
				if req.ContextItemID, err = uuid.Parse(itemID); err != nil {
					return fmt.Errorf("invalid --item: %w", err)
				}
			}

			result, err := svc.ResolveAllowedFragments(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&device, "device", "d", "", "device whose layout is edited (required)")
	cmd.Flags().StringVar(&contextDevice, "context-device", "", "ambient editor device (defaults to --device)")
	cmd.Flags().StringVarP(&itemID, "item", "i", "", "page being edited")
	cmd.Flags().StringVar(&site, "current-site", "", "ambient site when there is no page")
	_ = cmd.MarkFlagRequired("device")

	return cmd
}

// NewInsertCommand creates the insert command
func NewInsertCommand(flags *globalFlags) *cobra.Command {
	var (
		device string
		show   bool
	)

	cmd := &cobra.Command{
		Use:   "insert <page-id> <item-id> <placeholder>",
		Short: "Insert a preset or component into a page placeholder",
		Long: `Insert a preset fragment (its whole rendering subtree, re-keyed) or an
ordinary component into a page placeholder and persist the new layout.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pageID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid page id: %w", err)
			}
			itemID, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid item id: %w", err)
			}

			svc, _, err := newService(cmd, flags)
			if err != nil {
				return err
			}

			result, err := svc.InsertRendering(cmd.Context(), layoutpreset.InsertRenderingRequest{
				ItemID:          pageID,
				DeviceID:        device,
				RenderingItemID: itemID,
				PlaceholderKey:  args[2],
			})
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}

			if show {
				variant, err := svc.GetDevice(cmd.Context(), pageID, device)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), variant)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&device, "device", "d", "", "device variant to edit (required)")
	cmd.Flags().BoolVar(&show, "show", false, "print the page's device variant after the insert")
	_ = cmd.MarkFlagRequired("device")

	return cmd
}

// NewBoundSlotCommand creates the bound-slot command
func NewBoundSlotCommand(flags *globalFlags) *cobra.Command {
	var device string

	cmd := &cobra.Command{
		Use:   "bound-slot <preset-id>",
		Short: "Print the placeholder a preset is bound to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid preset id: %w", err)
			}

			svc, _, err := newService(cmd, flags)
			if err != nil {
				return err
			}

			slot, bound, err := svc.BoundPlaceholder(cmd.Context(), id, device)
			if err != nil {
				return err
			}
			if !bound {
				fmt.Fprintln(cmd.OutOrStdout(), "unbound")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), slot)
			return nil
		},
	}

	cmd.Flags().StringVarP(&device, "device", "d", "", "device variant (required)")
	_ = cmd.MarkFlagRequired("device")

	return cmd
}

// NewPresetsCommand creates the presets command
func NewPresetsCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "presets <folder-id>",
		Short: "List the preset fragments directly under a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid folder id: %w", err)
			}

			svc, _, err := newService(cmd, flags)
			if err != nil {
				return err
			}

			presets, err := svc.ListPresets(cmd.Context(), id)
			if err != nil {
				return err
			}
			for _, p := range presets {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.ID, p.Path)
			}
			return nil
		},
	}
}

// NewLocationsCommand creates the locations command
func NewLocationsCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "locations",
		Short: "List the preset folders searched for each site scope",
		Long: `List every registered site scope with the folders the filter searches
for it, shared folders included.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			rules := layoutpreset.NewLocationRules(cfg.LocationRules())
			for _, scope := range rules.Scopes() {
				for _, folder := range rules.Folders(scope) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", scope, folder)
				}
			}
			return nil
		},
	}
}

// NewShowCommand creates the show command
func NewShowCommand(flags *globalFlags) *cobra.Command {
	var device string

	cmd := &cobra.Command{
		Use:   "show <node-id>",
		Short: "Print a node, or one of its device variants with --device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid node id: %w", err)
			}

			svc, _, err := newService(cmd, flags)
			if err != nil {
				return err
			}

			if device != "" {
				variant, err := svc.GetDevice(cmd.Context(), id, device)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), variant)
			}

			node, err := svc.GetNode(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), node)
		},
	}

	cmd.Flags().StringVarP(&device, "device", "d", "", "print this device variant instead of the node")

	return cmd
}

// NewCanonicalizeCommand creates the canonicalize command
func NewCanonicalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "canonicalize <placeholder>...",
		Short: "Strip dynamic placeholder suffixes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range args {
				fmt.Fprintln(cmd.OutOrStdout(), layoutpreset.CanonicalizePlaceholder(p))
			}
			return nil
		},
	}
}
