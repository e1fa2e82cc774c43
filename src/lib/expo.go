package lib

import (
	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
)

// ExpoPushClient sends mobile push messages through Expo's push service.
type ExpoPushClient interface {
	Publish(message *expo.PushMessage) (expo.PushResponse, error)
}

var pushClient ExpoPushClient

func GetExpoPushClient() ExpoPushClient {
	if pushClient != nil {
		return pushClient
	}
	pushClient = expo.NewPushClient(nil)
	return pushClient
}

// NewExpoPushClient replaces the push client with a custom implementation.
func NewExpoPushClient(c ExpoPushClient) {
	pushClient = c
}
