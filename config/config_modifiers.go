// Copyright 2019 the orbs-tally authors
// This file is part of the orbs-tally library in the Orbs project.
//
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
// The above notice should be included in all copies or substantial portions of the software.

package config

import (
	"encoding/json"
	"fmt"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"io/ioutil"
	"os"
	"strings"
	"time"
)

func modifyFromJson(cfg mutableNodeConfig, source string) error {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(source), &data); err != nil {
		return err
	}

	if err := populateConfig(cfg, data); err != nil {
		return err
	}

	return nil
}

func convertKeyName(key string) string {
	return strings.ToUpper(strings.Replace(key, "-", "_", -1))
}

func populateConfig(cfg mutableNodeConfig, data map[string]interface{}) error {
	for key, value := range data {

		if key == "tally-contract-address" {
			address, ok := value.(string)
			if !ok || !common.IsHexAddress(address) {
				return fmt.Errorf("could not decode value for config key %s: %v is not an ethereum address", key, value)
			}
			cfg.SetString(TALLY_CONTRACT_ADDRESS, address)
			continue
		} else if key == "kafka-brokers" {
			if list, ok := value.([]interface{}); ok {
				var brokers []string
				for _, item := range list {
					brokers = append(brokers, fmt.Sprintf("%v", item))
				}
				cfg.SetString(KAFKA_BROKERS, strings.Join(brokers, ","))
				continue
			}
		}

		switch value.(type) {
		case bool:
			cfg.SetBool(convertKeyName(key), value.(bool))
		case float64:
			cfg.SetUint32(convertKeyName(key), uint32(value.(float64)))
		case string:
			if duration, decodeError := time.ParseDuration(value.(string)); decodeError != nil {
				cfg.SetString(convertKeyName(key), value.(string))
			} else {
				cfg.SetDuration(convertKeyName(key), duration)
			}
		default:
			return fmt.Errorf("could not decode value for config key %s: unsupported type %T", key, value)
		}
	}

	return nil
}

// For main reading several files into one config

type ArrayFlags []string

func (i *ArrayFlags) String() string {
	return strings.Join(*i, ",")
}

func (i *ArrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

func GetNodeConfigFromFiles(configFiles ArrayFlags, httpAddress string) (mutableNodeConfig, error) {
	cfg := ForProduction(httpAddress)

	for _, configFile := range configFiles {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return nil, errors.Errorf("could not open config file: %s", err)
		}

		contents, err := ioutil.ReadFile(configFile)
		if err != nil {
			return nil, err
		}

		if err := modifyFromJson(cfg, string(contents)); err != nil {
			return nil, errors.Wrapf(err, "failed parsing config file %s", configFile)
		}
	}

	return cfg, nil
}
