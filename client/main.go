package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Interactive test client for the coordinator. Type commands on stdin:
//
//	create | join | ready | start
//	color <n> | lock | unlock | battle
//	bomb <row> <col> <strength> | pos <x> <y> <dir>

type envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func send(c *websocket.Conn, msgType string, payload interface{}) error {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	frame, err := json.Marshal(envelope{Type: msgType, Payload: payload})
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, frame)
}

func main() {
	var host string
	flag.StringVar(&host, "host", "localhost:8080", "coordinator address")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{Scheme: "ws", Host: host, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			log.Printf("<- RECV: %s", string(message))
		}
	}()

	go func() {
		<-interrupt
		log.Println("Interrupt received, closing connection.")
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
		os.Exit(0)
	}()

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		default:
		}

		text, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		var sendErr error
		switch fields[0] {
		case "create":
			sendErr = send(c, "createRoom", nil)
		case "join":
			sendErr = send(c, "joinAny", nil)
		case "ready":
			sendErr = send(c, "setReady", nil)
		case "start":
			sendErr = send(c, "startGame", nil)
		case "color":
			if len(fields) < 2 {
				log.Println("usage: color <n>")
				continue
			}
			n, _ := strconv.Atoi(fields[1])
			sendErr = send(c, "charSelectSetColor", map[string]interface{}{"colorIndex": n})
		case "lock":
			sendErr = send(c, "charSelectSetLocked", map[string]interface{}{"locked": true})
		case "unlock":
			sendErr = send(c, "charSelectSetLocked", map[string]interface{}{"locked": false})
		case "battle":
			sendErr = send(c, "charSelectStartBattle", nil)
		case "bomb":
			if len(fields) < 4 {
				log.Println("usage: bomb <row> <col> <strength>")
				continue
			}
			row, _ := strconv.Atoi(fields[1])
			col, _ := strconv.Atoi(fields[2])
			str, _ := strconv.Atoi(fields[3])
			sendErr = send(c, "placeBomb", map[string]interface{}{"row": row, "column": col, "strength": str})
		case "pos":
			if len(fields) < 4 {
				log.Println("usage: pos <x> <y> <dir>")
				continue
			}
			x, _ := strconv.ParseFloat(fields[1], 64)
			y, _ := strconv.ParseFloat(fields[2], 64)
			sendErr = send(c, "playerState", map[string]interface{}{"x": x, "y": y, "direction": fields[3]})
		default:
			log.Printf("unknown command %q", fields[0])
			continue
		}

		if sendErr != nil {
			log.Println("Write error:", sendErr)
			return
		}
		log.Printf("-> SENT: %s", fields[0])
	}
}
