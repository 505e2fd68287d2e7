package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	catalog "strategy_builder/internal/modules/catalog/service"
)

func main() {
	pflag.String("draft", "draft.yaml", "strategy draft file (yaml)")
	pflag.Bool("describe", false, "print a readable summary instead of config_json")
	pflag.Parse()
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		panic(fmt.Errorf("bind flags: %w", err))
	}

	draftViper := viper.New()
	draftViper.SetConfigFile(viper.GetString("draft"))
	draftViper.SetConfigType("yaml")
	if err := draftViper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "read draft: %v\n", err)
		os.Exit(2)
	}

	if err := render(draftViper, catalog.Default(), os.Stdout, viper.GetBool("describe")); err != nil {
		if !errors.Is(err, errInvalidDraft) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
