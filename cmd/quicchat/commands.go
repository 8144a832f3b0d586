package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/outofforest/logger"
	"github.com/outofforest/quicchat"
	"github.com/outofforest/quicchat/client"
	"github.com/outofforest/quicchat/transport"
	"github.com/outofforest/quicchat/types"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "quicchat",
		Short:         "Message board served over QUIC",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	logger.AddFlags(logger.DefaultConfig, root.PersistentFlags())

	root.AddCommand(
		newServerCommand(),
		newPostCommand(),
		newGetAllCommand(),
		newGetLenCommand(),
		newClearCommand(),
	)
	return root
}

func newServerCommand() *cobra.Command {
	config := types.DefaultServerConfig

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Runs the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return quicchat.Run(cmd.Context(), config)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&config.ListenAddress, "listen", config.ListenAddress, "Address to listen on")
	flags.StringVar(&config.CertFile, "cert", "", "PEM file with server certificate")
	flags.StringVar(&config.KeyFile, "key", "", "PEM file with server private key")
	flags.StringVar(&config.SelfSignedCertFile, "ca-out", "",
		"File to store generated self-signed certificate in, used if certificate is not provided")
	flags.Uint64Var(&config.MaxMessageSize, "max-message-size", config.MaxMessageSize,
		"Maximum size of the message accepted from the client")
	flags.DurationVar(&config.ExchangeTimeout, "exchange-timeout", config.ExchangeTimeout,
		"Time limit for the whole exchange, 0 disables it")
	flags.IntVar(&config.MaxConnections, "max-connections", config.MaxConnections,
		"Maximum number of connections handled concurrently, 0 means no limit")

	return cmd
}

func newPostCommand() *cobra.Command {
	return newClientCommand(&cobra.Command{
		Use:   "post <message>",
		Short: "Posts message",
		Args:  cobra.ExactArgs(1),
	}, func(ctx context.Context, cmd *cobra.Command, c *client.Client, args []string) error {
		if err := c.Post(ctx, args[0]); err != nil {
			return err
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "OK")
		return err
	})
}

func newGetAllCommand() *cobra.Command {
	return newClientCommand(&cobra.Command{
		Use:     "get",
		Aliases: []string{"get-all"},
		Short:   "Prints all the messages",
		Args:    cobra.NoArgs,
	}, func(ctx context.Context, cmd *cobra.Command, c *client.Client, _ []string) error {
		messages, err := c.GetAll(ctx)
		if err != nil {
			return err
		}
		for _, m := range messages {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), m); err != nil {
				return err
			}
		}
		return nil
	})
}

func newGetLenCommand() *cobra.Command {
	return newClientCommand(&cobra.Command{
		Use:   "get-len",
		Short: "Prints the number of messages",
		Args:  cobra.NoArgs,
	}, func(ctx context.Context, cmd *cobra.Command, c *client.Client, _ []string) error {
		length, err := c.GetLen(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), length)
		return err
	})
}

func newClearCommand() *cobra.Command {
	return newClientCommand(&cobra.Command{
		Use:   "clear",
		Short: "Removes all the messages",
		Args:  cobra.NoArgs,
	}, func(ctx context.Context, cmd *cobra.Command, c *client.Client, _ []string) error {
		if err := c.Clear(ctx); err != nil {
			return err
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "OK")
		return err
	})
}

type clientFunc func(ctx context.Context, cmd *cobra.Command, c *client.Client, args []string) error

func newClientCommand(cmd *cobra.Command, fn clientFunc) *cobra.Command {
	config := types.DefaultClientConfig
	addClientFlags(cmd.Flags(), &config)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if config.Trust.InsecureSkipVerify {
			logger.Get(ctx).Warn("Server certificate is not verified")
		}

		tlsConfig, err := transport.ClientTLSConfig(config.Trust)
		if err != nil {
			return err
		}
		return fn(ctx, cmd, client.New(config, tlsConfig), args)
	}
	return cmd
}

func addClientFlags(flags *pflag.FlagSet, config *types.ClientConfig) {
	flags.StringVar(&config.ServerAddress, "server", config.ServerAddress, "Address of the server")
	flags.StringVar(&config.Trust.ServerName, "server-name", config.Trust.ServerName,
		"Name expected in the server certificate")
	flags.StringVar(&config.Trust.CAFile, "ca", "", "PEM file with trusted certificates, system roots are used if empty")
	flags.BoolVar(&config.Trust.InsecureSkipVerify, "insecure", false, "Skips verification of the server certificate")
	flags.DurationVar(&config.ExchangeTimeout, "timeout", config.ExchangeTimeout,
		"Time limit for the whole exchange, 0 disables it")
	flags.Uint64Var(&config.MaxMessageSize, "max-message-size", config.MaxMessageSize,
		"Maximum size of the message exchanged with the server")
}
