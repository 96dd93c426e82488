// predictctl is a command line client for the housing and electricity
// prediction services.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	xhttp "UKPredict/pkg/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	predictTimeout = 10 * time.Second
	healthTimeout  = 2 * time.Second
	infoTimeout    = 5 * time.Second
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli carries the resolved settings shared by every subcommand.
type cli struct {
	v      *viper.Viper
	out    io.Writer
	client *xhttp.Client
}

func newRootCmd(out io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("PREDICT")
	v.AutomaticEnv()
	v.SetDefault("housing_url", "http://localhost:8000")
	v.SetDefault("electricity_url", "http://localhost:8001")

	c := &cli{v: v, out: out, client: xhttp.NewClient(xhttp.WithTimeout(predictTimeout))}

	root := &cobra.Command{
		Use:           "predictctl",
		Short:         "Query the UK housing price and electricity demand services",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	root.PersistentFlags().String("housing-url", "", "housing service base URL (env PREDICT_HOUSING_URL)")
	root.PersistentFlags().String("electricity-url", "", "electricity service base URL (env PREDICT_ELECTRICITY_URL)")
	_ = v.BindPFlag("housing_url", root.PersistentFlags().Lookup("housing-url"))
	_ = v.BindPFlag("electricity_url", root.PersistentFlags().Lookup("electricity-url"))

	root.AddCommand(c.healthCmd())
	root.AddCommand(c.modelInfoCmd())
	root.AddCommand(c.predictCmd())
	return root
}
