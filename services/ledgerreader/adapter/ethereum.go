// Copyright 2019 the orbs-tally authors
// This file is part of the orbs-tally library in the Orbs project.
//
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
// The above notice should be included in all copies or substantial portions of the software.

package adapter

import (
	"context"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/orbs-network/govnr"
	"github.com/orbs-network/orbs-tally/instrumentation/metric"
	"github.com/orbs-network/scribe/log"
	"github.com/pkg/errors"
	"math/big"
	"sync"
)

type ethereumAdapterConfig interface {
	EthereumEndpoint() string
}

// BatchCaller is the part of a JSON-RPC client the batch executor needs
type BatchCaller interface {
	BatchCallContext(ctx context.Context, b []rpc.BatchElem) error
}

type EthereumRpcConnection struct {
	govnr.TreeSupervisor

	config   ethereumAdapterConfig
	logger   log.Logger
	registry metric.Registry

	mu struct {
		sync.Mutex
		client *rpc.Client
	}
}

func NewEthereumRpcConnection(config ethereumAdapterConfig, logger log.Logger, registry metric.Registry) *EthereumRpcConnection {
	return &EthereumRpcConnection{
		config:   config,
		logger:   logger.WithTags(log.String("adapter", "ethereum")),
		registry: registry,
	}
}

// dial is lazy; the client is kept once a connection succeeds
func (c *EthereumRpcConnection) dial(ctx context.Context) (*rpc.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mu.client != nil {
		return c.mu.client, nil
	}

	client, err := rpc.DialContext(ctx, c.config.EthereumEndpoint())
	if err != nil {
		return nil, errors.Wrapf(err, "failed dialing ethereum endpoint %s", c.config.EthereumEndpoint())
	}
	c.logger.Info("connected to ethereum endpoint", log.String("endpoint", c.config.EthereumEndpoint()))
	c.mu.client = client
	return client, nil
}

func (c *EthereumRpcConnection) BatchCallContext(ctx context.Context, b []rpc.BatchElem) error {
	client, err := c.dial(ctx)
	if err != nil {
		return err
	}
	return client.BatchCallContext(ctx, b)
}

func (c *EthereumRpcConnection) EthClient(ctx context.Context) (*ethclient.Client, error) {
	client, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	return ethclient.NewClient(client), nil
}

func (c *EthereumRpcConnection) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	client, err := c.EthClient(ctx)
	if err != nil {
		return nil, err
	}

	header, err := client.HeaderByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	// not supposed to happen since client.HeaderByNumber does not return nil, nil
	if header == nil {
		return nil, errors.New("ethereum returned nil header without error")
	}

	return header, nil
}

func (c *EthereumRpcConnection) SyncProgress(ctx context.Context) (*ethereum.SyncProgress, error) {
	client, err := c.EthClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.SyncProgress(ctx)
}

func (c *EthereumRpcConnection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mu.client != nil {
		c.mu.client.Close()
		c.mu.client = nil
	}
}
