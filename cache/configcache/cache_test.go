package configcache

import (
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"gitlab.com/netops-console/vyos_console_api/model"
	"gitlab.com/netops-console/vyos_console_api/net/redis"
)

func testCache(c Cache) {
	key := RulesKey("firewall", "WAN_IN")
	rules := []model.Rule{{Number: 10, Fields: map[string]interface{}{"action": "accept"}}}

	Convey("a missing key is reported as not found", func() {
		var got []model.Rule
		found, err := c.Get(key, &got)
		So(err, ShouldBeNil)
		So(found, ShouldBeFalse)
	})

	Convey("a stored value is returned as a copy", func() {
		So(c.Set(key, rules, time.Minute), ShouldBeNil)
		rules[0].Fields["action"] = "drop"

		var got []model.Rule
		found, err := c.Get(key, &got)
		So(err, ShouldBeNil)
		So(found, ShouldBeTrue)
		So(got[0].Number, ShouldEqual, 10)
		So(got[0].Fields["action"], ShouldEqual, "accept")

		Convey("and is gone once deleted", func() {
			So(c.Delete(key), ShouldBeNil)
			found, err := c.Get(key, &got)
			So(err, ShouldBeNil)
			So(found, ShouldBeFalse)
		})

		Convey("and is gone once flushed", func() {
			So(c.Flush(), ShouldBeNil)
			found, err := c.Get(key, &got)
			So(err, ShouldBeNil)
			So(found, ShouldBeFalse)
		})
	})
}

func TestMemory(t *testing.T) {
	Convey("Given a memory cache", t, func() {
		testCache(NewMemory())
	})

	Convey("Entries expire after their ttl", t, func() {
		now := time.Now()
		c := NewMemory()
		c.now = func() time.Time { return now }
		So(c.Set("k", "v", time.Second), ShouldBeNil)

		var got string
		found, _ := c.Get("k", &got)
		So(found, ShouldBeTrue)

		now = now.Add(2 * time.Second)
		found, _ = c.Get("k", &got)
		So(found, ShouldBeFalse)
	})
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("CFG_REDIS_ADDR")
	if addr == "" {
		t.Skip("CFG_REDIS_ADDR not set")
	}
	client := redis.NewClient(redis.Config{Addr: addr})
	if err := client.Connect(); err != nil {
		t.Fatalf("unable to connect to redis: %v", err)
	}
	defer client.Disconnect()

	Convey("Given a redis cache", t, func() {
		c := NewRedis(client)
		So(c.Flush(), ShouldBeNil)
		testCache(c)
	})
}
