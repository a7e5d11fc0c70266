// Package domain contains the core pricing types shared across broker adapters.
package domain

// Broker identifies a price source exchange.
type Broker string

const (
	BrokerBinance  Broker = "Binance"
	BrokerCoinbase Broker = "Coinbase"
	BrokerBitfinex Broker = "Bitfinex"
	BrokerBittrex  Broker = "Bittrex"
	BrokerHuobi    Broker = "Huobi"
)

// AllBrokers lists every supported broker in display order.
func AllBrokers() []Broker {
	return []Broker{
		BrokerBinance,
		BrokerCoinbase,
		BrokerBitfinex,
		BrokerBittrex,
		BrokerHuobi,
	}
}

// String returns the broker display name.
func (b Broker) String() string {
	return string(b)
}
