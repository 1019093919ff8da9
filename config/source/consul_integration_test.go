// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build integration

package source

import (
	"context"
	"testing"

	"github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/log"
	"github.com/testcontainers/testcontainers-go/modules/consul"

	"rivaas.dev/rawhttp/config/codec"
)

type ConsulSourceTestSuite struct {
	suite.Suite
	container *consul.ConsulContainer
	client    *api.Client
}

func (s *ConsulSourceTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := consul.Run(ctx, "hashicorp/consul:1.15", testcontainers.WithLogger(log.TestLogger(s.T())))
	s.Require().NoError(err)
	s.container = container

	endpoint, err := container.ApiEndpoint(ctx)
	s.Require().NoError(err)

	cfg := api.DefaultConfig()
	cfg.Address = endpoint
	s.client, err = api.NewClient(cfg)
	s.Require().NoError(err)
}

func (s *ConsulSourceTestSuite) TearDownSuite() {
	if s.container != nil {
		s.Require().NoError(testcontainers.TerminateContainer(s.container))
	}
}

func (s *ConsulSourceTestSuite) put(key, value string) {
	_, err := s.client.KV().Put(&api.KVPair{Key: key, Value: []byte(value)}, nil)
	s.Require().NoError(err)
}

func (s *ConsulSourceTestSuite) TestDocument() {
	s.put("rawhttp/config.yaml", "server:\n  port: 9090\n  log:\n    level: debug\n")

	src, err := NewConsul("rawhttp/config.yaml", codec.YAMLCodec{}, s.client.KV())
	s.Require().NoError(err)

	conf, err := src.Load(context.Background())
	s.Require().NoError(err)

	server := conf["server"].(map[string]any)
	s.EqualValues(9090, server["port"])
	s.Equal("debug", server["log"].(map[string]any)["level"])
	s.NotZero(src.LastIndex())
}

func (s *ConsulSourceTestSuite) TestScalar() {
	s.put("rawhttp/server/workers", "12")

	src, err := NewConsul("rawhttp/server/workers", codec.NewCaster(codec.TypeCasterInt), s.client.KV())
	s.Require().NoError(err)

	conf, err := src.Load(context.Background())
	s.Require().NoError(err)
	s.Equal(map[string]any{"workers": 12}, conf)
}

func (s *ConsulSourceTestSuite) TestMissingKey() {
	src, err := NewConsul("rawhttp/nothing-here.json", codec.JSONCodec{}, s.client.KV())
	s.Require().NoError(err)

	conf, err := src.Load(context.Background())
	s.Require().NoError(err)
	s.Empty(conf)
}

func TestConsulSourceTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	suite.Run(t, new(ConsulSourceTestSuite))
}
