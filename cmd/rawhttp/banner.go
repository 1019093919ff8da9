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

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/common-nighthawk/go-figure"

	"rivaas.dev/rawhttp/config"
	"rivaas.dev/rawhttp/metrics"
	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/server"
	"rivaas.dev/rawhttp/tracing"
)

type bannerInfo struct {
	addr     string
	settings config.Server
	mounts   []server.Mount
	metrics  *metrics.Recorder
	tracer   *tracing.Tracer
}

var (
	gradient      = []string{"12", "14", "10", "11"} // blue, cyan, green, yellow
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(14).PaddingLeft(2)
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	providerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	methodStyles = map[request.Method]lipgloss.Style{
		request.GET:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		request.POST:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		request.PUT:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		request.PATCH:  lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
		request.DELETE: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		request.ALL:    lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Bold(true),
	}
)

// colorWriter downgrades styling to what w supports; plain files and pipes
// get no escape codes.
func colorWriter(w io.Writer) *colorprofile.Writer {
	return colorprofile.NewWriter(w, os.Environ())
}

func printBanner(out io.Writer, info bannerInfo) {
	w := colorWriter(out)

	var art strings.Builder
	for _, line := range figure.NewFigure("rawhttp", "", false).Slicify() {
		if strings.TrimSpace(line) == "" {
			continue
		}
		for i, char := range line {
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradient[i%len(gradient)])).Bold(true)
			art.WriteString(style.Render(string(char)))
		}
		art.WriteString("\n")
	}

	var body strings.Builder
	line := func(label, value string) {
		body.WriteString(labelStyle.Render(label) + "  " + value + "\n")
	}

	body.WriteString(categoryStyle.Render("Server") + "\n")
	line("Version:", valueStyle.Foreground(lipgloss.Color("14")).Render(version))
	line("Address:", valueStyle.Foreground(lipgloss.Color("10")).Render("http://"+info.addr))
	line("Workers:", valueStyle.Render(fmt.Sprintf("%d (queue %d)", info.settings.Workers, info.settings.QueueSize)))

	body.WriteString("\n" + categoryStyle.Render("Observability") + "\n")
	if info.metrics != nil {
		line("Metrics:", valueStyle.Foreground(lipgloss.Color("13")).Render("http://"+info.addr+info.metrics.Path())+
			"  "+providerStyle.Render(fmt.Sprintf("[%s]", info.metrics.Provider())))
	} else {
		line("Metrics:", disabledStyle.Render("Disabled"))
	}
	if info.tracer != nil {
		line("Tracing:", valueStyle.Foreground(lipgloss.Color("12")).Render("Enabled")+
			"  "+providerStyle.Render(fmt.Sprintf("[%s]", info.tracer.Provider())))
	} else {
		line("Tracing:", disabledStyle.Render("Disabled"))
	}

	fmt.Fprintln(w)
	fmt.Fprint(w, art.String())
	fmt.Fprintln(w)
	fmt.Fprint(w, body.String())
	if len(info.mounts) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, routesTable(info.mounts))
	}
	fmt.Fprintln(w)
}

// routesTable lists every route of every mount with its full path.
func routesTable(mounts []server.Mount) string {
	rows := make([][]string, 0)
	for _, m := range mounts {
		name := m.Router.Name()
		if name == "" {
			name = "-"
		}
		for _, route := range m.Router.Routes() {
			method := route.Method.String()
			if style, ok := methodStyles[route.Method]; ok {
				method = style.Render(method)
			}
			params := "-"
			if len(route.Params) > 0 {
				params = strings.Join(route.Params, ", ")
			}
			rows = append(rows, []string{method, fullPath(m.Prefix, route.Path), name, params, fmt.Sprint(route.Stages)})
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("Method", "Path", "Router", "Params", "Stages").
		Rows(rows...).
		String()
}

func fullPath(prefix, template string) string {
	if template == "/" && prefix != "" {
		return prefix
	}
	return prefix + template
}
