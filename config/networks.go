package config

import (
	_ "embed"
	"net/url"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed networks.yaml
var defaultNetworks []byte

var ErrUnknownNetwork = errors.New("unknown network")

type Network struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Host    string `yaml:"host"`
	ChainID int64  `yaml:"chainid"`

	CmdSettings struct {
		Port int `yaml:"port"`
	} `yaml:"cmd_settings"`
}

// URL is the RPC endpoint with environment references expanded and the
// development port applied.
func (n Network) URL() string {
	host := os.ExpandEnv(n.Host)
	if n.CmdSettings.Port == 0 {
		return host
	}
	u, err := url.Parse(host)
	if err != nil || u.Port() != "" {
		return host
	}
	u.Host = u.Host + ":" + strconv.Itoa(n.CmdSettings.Port)
	return u.String()
}

type NetworkGroup struct {
	Name     string    `yaml:"name"`
	Networks []Network `yaml:"networks"`
}

// NetworkConfig mirrors the layout of brownie's network-config.yaml.
type NetworkConfig struct {
	Live        []NetworkGroup `yaml:"live"`
	Development []Network      `yaml:"development"`
}

func ParseNetworks(data []byte) (*NetworkConfig, error) {
	var nc NetworkConfig
	if err := yaml.Unmarshal(data, &nc); err != nil {
		return nil, errors.Wrap(err, "parse networks")
	}
	return &nc, nil
}

// LoadNetworks reads a networks file, or the built-in defaults when path is empty.
func LoadNetworks(path string) (*NetworkConfig, error) {
	if path == "" {
		return ParseNetworks(defaultNetworks)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read networks")
	}
	return ParseNetworks(data)
}

func (nc *NetworkConfig) All() []Network {
	all := append([]Network{}, nc.Development...)
	for _, group := range nc.Live {
		all = append(all, group.Networks...)
	}
	return all
}

func (nc *NetworkConfig) Find(id string) (Network, error) {
	for _, n := range nc.All() {
		if n.ID == id {
			return n, nil
		}
	}
	return Network{}, errors.Wrap(ErrUnknownNetwork, id)
}
