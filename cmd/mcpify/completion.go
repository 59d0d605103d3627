// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/mcpify/internal/errors"
)

const bashCompletionTemplate = `#!/bin/bash

# Bash completion script for mcpify
# Installation:
#   source <(mcpify completion bash)

_mcpify_completion() {
    local cur prev commands
    commands="init detect inventory match view probe completion"

    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    case "${prev}" in
        --strategy|-s)
            COMPREPLY=( $(compgen -W "auto llm heuristic composite local-only" -- ${cur}) )
            return 0
            ;;
        --format|-f)
            COMPREPLY=( $(compgen -W "json yaml" -- ${cur}) )
            return 0
            ;;
        --embedding-provider)
            COMPREPLY=( $(compgen -W "openai ollama nomic gemini mock" -- ${cur}) )
            return 0
            ;;
        --llm-provider)
            COMPREPLY=( $(compgen -W "openai anthropic ollama mock" -- ${cur}) )
            return 0
            ;;
    esac

    if [ $COMP_CWORD -eq 1 ]; then
        if [[ ${cur} == -* ]] ; then
            COMPREPLY=( $(compgen -W "--config --json --quiet --no-color --verbose --debug --metrics-addr --version" -- ${cur}) )
        else
            COMPREPLY=( $(compgen -W "${commands}" -- ${cur}) )
        fi
        return 0
    fi

    local cmd="${COMP_WORDS[1]}"
    case "${cmd}" in
        init)
            COMPREPLY=( $(compgen -W "--force --yes --strategy --llm-provider --llm-model --embedding-provider" -- ${cur}) )
            ;;
        detect)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--strategy --format --output --exclude --stdout --enhance" -- ${cur}) )
            else
                COMPREPLY=( $(compgen -d -- ${cur}) )
            fi
            ;;
        inventory)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--exclude --include-private --summary" -- ${cur}) )
            else
                COMPREPLY=( $(compgen -d -- ${cur}) )
            fi
            ;;
        match)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--exclude --include-private --embedding-provider --max-candidates --output" -- ${cur}) )
            fi
            ;;
        view)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--validate" -- ${cur}) )
            else
                COMPREPLY=( $(compgen -f -X '!*.@(json|yaml|yml)' -- ${cur}) )
            fi
            ;;
        probe)
            COMPREPLY=( $(compgen -W "--timeout --dir --env" -- ${cur}) )
            ;;
        completion)
            if [ $COMP_CWORD -eq 2 ]; then
                COMPREPLY=( $(compgen -W "bash zsh fish" -- ${cur}) )
            fi
            ;;
    esac
}

complete -F _mcpify_completion mcpify
`

const zshCompletionTemplate = `#compdef mcpify

# Zsh completion script for mcpify
# Installation:
#   mcpify completion zsh > "${fpath[1]}/_mcpify"

_mcpify() {
    local -a commands
    commands=(
        'init:Create .mcpify.yaml configuration'
        'detect:Detect tools and write the server config'
        'inventory:List the project'"'"'s Python functions'
        'match:Generate tools for a natural-language request'
        'view:Pretty-print a server config'
        'probe:Ask a running MCP server for its tools'
        'completion:Generate shell completion script'
    )

    _arguments -C \
        '(- *)--version[Show version and exit]' \
        '--config[Path to .mcpify.yaml]:config file:_files -g "*.yaml"' \
        '--json[Machine-readable JSON output]' \
        '--quiet[Suppress progress output]' \
        '--no-color[Disable colored output]' \
        '--debug[Enable debug logging]' \
        '--metrics-addr[Prometheus metrics address]:address:' \
        '1: :->command' \
        '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                init)
                    _arguments \
                        '--force[Overwrite existing configuration]' \
                        '--yes[Use defaults]' \
                        '--strategy[Detection strategy]:strategy:(auto llm heuristic composite local-only)' \
                        '--llm-provider[LLM provider]:provider:(openai anthropic ollama mock)' \
                        '--llm-model[LLM model]:model:' \
                        '--embedding-provider[Embedding provider]:provider:(openai ollama nomic gemini mock)'
                    ;;
                detect)
                    _arguments \
                        '--strategy[Detection strategy]:strategy:(auto llm heuristic composite local-only)' \
                        '--format[Output format]:format:(json yaml)' \
                        '--output[Output file]:file:_files' \
                        '--exclude[Exclude glob]:glob:' \
                        '--stdout[Print instead of writing a file]' \
                        '--enhance[Improve detected tools with the LLM]' \
                        '1:project:_directories'
                    ;;
                inventory)
                    _arguments \
                        '--exclude[Exclude glob]:glob:' \
                        '--include-private[Keep _private functions]' \
                        '--summary[Print only the summary]' \
                        '1:project:_directories'
                    ;;
                match)
                    _arguments \
                        '--exclude[Exclude glob]:glob:' \
                        '--include-private[Consider _private functions]' \
                        '--embedding-provider[Embedding provider]:provider:(openai ollama nomic gemini mock)' \
                        '--max-candidates[Functions sent to the LLM]:count:' \
                        '--output[Server config file]:file:_files' \
                        '1:project:_directories' \
                        '2:request:'
                    ;;
                view)
                    _arguments \
                        '--validate[Fail on invalid tools]' \
                        '1:config:_files -g "*.(json|yaml|yml)"'
                    ;;
                probe)
                    _arguments \
                        '--timeout[Time allowed to answer]:duration:' \
                        '--dir[Server working directory]:dir:_directories' \
                        '--env[Extra environment]:KEY=VALUE:'
                    ;;
                completion)
                    _arguments \
                        '1:shell:(bash zsh fish)'
                    ;;
            esac
            ;;
    esac
}

_mcpify
`

const fishCompletionTemplate = `# Fish completion script for mcpify
# Installation:
#   mcpify completion fish > ~/.config/fish/completions/mcpify.fish

# Commands
complete -c mcpify -f -n "__fish_use_subcommand" -a "init" -d "Create .mcpify.yaml configuration"
complete -c mcpify -f -n "__fish_use_subcommand" -a "detect" -d "Detect tools and write the server config"
complete -c mcpify -f -n "__fish_use_subcommand" -a "inventory" -d "List the project's Python functions"
complete -c mcpify -f -n "__fish_use_subcommand" -a "match" -d "Generate tools for a natural-language request"
complete -c mcpify -f -n "__fish_use_subcommand" -a "view" -d "Pretty-print a server config"
complete -c mcpify -f -n "__fish_use_subcommand" -a "probe" -d "Ask a running MCP server for its tools"
complete -c mcpify -f -n "__fish_use_subcommand" -a "completion" -d "Generate shell completion script"

# Global flags
complete -c mcpify -l version -d "Show version and exit"
complete -c mcpify -l config -d "Path to .mcpify.yaml" -r
complete -c mcpify -l json -d "Machine-readable JSON output"
complete -c mcpify -l quiet -s q -d "Suppress progress output"
complete -c mcpify -l no-color -d "Disable colored output"
complete -c mcpify -l debug -d "Enable debug logging"
complete -c mcpify -l metrics-addr -d "Prometheus metrics address" -r

# init
complete -c mcpify -n "__fish_seen_subcommand_from init" -l force -d "Overwrite existing configuration"
complete -c mcpify -n "__fish_seen_subcommand_from init" -l yes -s y -d "Use defaults"
complete -c mcpify -n "__fish_seen_subcommand_from init" -l strategy -x -a "auto llm heuristic composite local-only"
complete -c mcpify -n "__fish_seen_subcommand_from init" -l llm-provider -x -a "openai anthropic ollama mock"
complete -c mcpify -n "__fish_seen_subcommand_from init" -l llm-model -r
complete -c mcpify -n "__fish_seen_subcommand_from init" -l embedding-provider -x -a "openai ollama nomic gemini mock"

# detect
complete -c mcpify -n "__fish_seen_subcommand_from detect" -l strategy -s s -x -a "auto llm heuristic composite local-only"
complete -c mcpify -n "__fish_seen_subcommand_from detect" -l format -s f -x -a "json yaml"
complete -c mcpify -n "__fish_seen_subcommand_from detect" -l output -s o -r
complete -c mcpify -n "__fish_seen_subcommand_from detect" -l exclude -r
complete -c mcpify -n "__fish_seen_subcommand_from detect" -l stdout -d "Print instead of writing a file"
complete -c mcpify -n "__fish_seen_subcommand_from detect" -l enhance -d "Improve detected tools with the LLM"

# inventory
complete -c mcpify -n "__fish_seen_subcommand_from inventory" -l exclude -r
complete -c mcpify -n "__fish_seen_subcommand_from inventory" -l include-private -d "Keep _private functions"
complete -c mcpify -n "__fish_seen_subcommand_from inventory" -l summary -d "Print only the summary"

# match
complete -c mcpify -n "__fish_seen_subcommand_from match" -l exclude -r
complete -c mcpify -n "__fish_seen_subcommand_from match" -l include-private -d "Consider _private functions"
complete -c mcpify -n "__fish_seen_subcommand_from match" -l embedding-provider -x -a "openai ollama nomic gemini mock"
complete -c mcpify -n "__fish_seen_subcommand_from match" -l max-candidates -r
complete -c mcpify -n "__fish_seen_subcommand_from match" -l output -s o -r

# view
complete -c mcpify -n "__fish_seen_subcommand_from view" -l validate -d "Fail on invalid tools"

# probe
complete -c mcpify -n "__fish_seen_subcommand_from probe" -l timeout -r
complete -c mcpify -n "__fish_seen_subcommand_from probe" -l dir -r
complete -c mcpify -n "__fish_seen_subcommand_from probe" -l env -r

# completion
complete -c mcpify -n "__fish_seen_subcommand_from completion" -f -a "bash zsh fish"
`

// runCompletion writes the completion script for the named shell to stdout.
//
// Examples:
//
//	source <(mcpify completion bash)
//	mcpify completion zsh > "${fpath[1]}/_mcpify"
//	mcpify completion fish | source
func runCompletion(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("completion", flag.ContinueOnError)
	fs.Usage = commandUsage(fs, `
Usage: mcpify completion <shell>

Generates a completion script for bash, zsh or fish.

Examples:
  source <(mcpify completion bash)
  mcpify completion zsh > "${fpath[1]}/_mcpify"
  mcpify completion fish > ~/.config/fish/completions/mcpify.fish
`)
	parseFlags(fs, args)

	if fs.NArg() != 1 {
		errors.FatalError(errors.NewInputError(
			"Invalid arguments",
			"The completion command requires exactly one argument: the shell name",
			"Run 'mcpify completion bash', 'mcpify completion zsh', or 'mcpify completion fish'",
		), globals.JSON)
	}

	script, ok := completionScript(fs.Arg(0))
	if !ok {
		errors.FatalError(errors.NewInputError(
			"Unsupported shell",
			fmt.Sprintf("Shell '%s' is not supported. Valid options: bash, zsh, fish", fs.Arg(0)),
			"Run 'mcpify completion bash', 'mcpify completion zsh', or 'mcpify completion fish'",
		), globals.JSON)
	}
	fmt.Fprint(os.Stdout, script)
}

func completionScript(shell string) (string, bool) {
	switch shell {
	case "bash":
		return bashCompletionTemplate, true
	case "zsh":
		return zshCompletionTemplate, true
	case "fish":
		return fishCompletionTemplate, true
	}
	return "", false
}
