package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/taoyao-code/visonic-proxy/internal/gateway"
	"github.com/taoyao-code/visonic-proxy/internal/protocol/b0"
)

// 离线帧解码器：把抓包得到的十六进制帧翻译成结构化 JSON。
// 帧可以作为命令行参数传入，也可以逐行从标准输入读取；
// 不完整的帧（缺 0d 前导、校验和或 0a 结尾）会先被补全再解码。
//
// 用法:
//
//	decoder "0d b0 01 24 01 05 43 e0 0a"
//	cat capture.txt | decoder -pretty
func main() {
	var labelsFile string
	var pretty bool
	flag.StringVar(&labelsFile, "labels", "", "设置项标签覆盖文件（YAML）")
	flag.BoolVar(&pretty, "pretty", false, "缩进输出 JSON")
	flag.Parse()

	settings := b0.DefaultSettings()
	if labelsFile != "" {
		o, err := b0.LoadLabelOverrides(labelsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load labels: %v\n", err)
			os.Exit(1)
		}
		if err := settings.Merge(o); err != nil {
			fmt.Fprintf(os.Stderr, "merge labels: %v\n", err)
			os.Exit(1)
		}
	}

	failed := 0
	if flag.NArg() > 0 {
		for _, arg := range flag.Args() {
			if !decodeLine(settings, arg, pretty) {
				failed++
			}
		}
	} else {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if !decodeLine(settings, line, pretty) {
				failed++
			}
		}
		if err := sc.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "read stdin: %v\n", err)
			os.Exit(1)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func decodeLine(settings *b0.SettingsTable, line string, pretty bool) bool {
	res, err := gateway.DecodeHex(settings, line)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode %q: %v\n", line, err)
		return false
	}

	var out []byte
	if pretty {
		out, err = json.MarshalIndent(res, "", "  ")
	} else {
		out, err = json.Marshal(res)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal result: %v\n", err)
		return false
	}
	fmt.Println(string(out))
	return true
}
