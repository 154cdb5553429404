// Package config holds the settings shared by the sitesearch commands:
// where the index lives and which backend stores it, how the crawler
// behaves, how teasers are produced and where the HTTP front end listens.
//
// Values come from three layers, lowest precedence first: the defaults of
// NewConfig, an optional YAML file (.sitesearch.yaml), and command-line
// flags. The OpenAI API key is only ever read from the environment, after
// an optional .env file has been loaded.
package config
